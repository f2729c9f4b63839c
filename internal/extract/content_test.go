package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContentLabeledPosts(t *testing.T) {
	text := `✅ Post 1 created!

![post one](/generated/p1.png)

Caption: Fresh brews for summer mornings

Hashtags: #Coffee #Summer #Morning

✅ Post 2 created!

![post two](/generated/p2.png)

Caption: Cold brew season is here

Hashtags: #ColdBrew #Iced`

	want := []Tuple{
		{
			MediaRef: "/generated/p1.png",
			Kind:     KindImage,
			Caption:  "Fresh brews for summer mornings",
			Hashtags: []string{"#Coffee", "#Summer", "#Morning"},
		},
		{
			MediaRef: "/generated/p2.png",
			Kind:     KindImage,
			Caption:  "Cold brew season is here",
			Hashtags: []string{"#ColdBrew", "#Iced"},
		},
	}

	got := Content(text)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Content mismatch (-want +got):\n%s", diff)
	}
}

func TestContentLabeledPostShortCircuits(t *testing.T) {
	// A matched post header claims the turn; stray references outside the
	// pairing do not produce extra tuples.
	text := `✅ Post 1 created!
![p](/generated/p1.png)
Caption: Hello world

Earlier file was /generated/old.png by the way.`

	got := Content(text)
	if len(got) != 1 {
		t.Fatalf("got %d tuples, want 1: %+v", len(got), got)
	}
	if got[0].MediaRef != "/generated/p1.png" {
		t.Errorf("MediaRef = %q, want /generated/p1.png", got[0].MediaRef)
	}
}

func TestContentCarousel(t *testing.T) {
	text := `Carousel complete! 🎉

Your slides:
- ![slide 1](/generated/s1.png)
- ![slide 2](/generated/s2.png)
- ![slide 3](/generated/s3.png)

Caption: Swipe through our fall lineup

Hashtags: #Fall #Lineup`

	got := Content(text)
	if len(got) != 3 {
		t.Fatalf("got %d tuples, want 3: %+v", len(got), got)
	}
	for i, tu := range got {
		if tu.Caption != "Swipe through our fall lineup" {
			t.Errorf("tuple %d caption = %q, want shared caption", i, tu.Caption)
		}
		if diff := cmp.Diff([]string{"#Fall", "#Lineup"}, tu.Hashtags); diff != "" {
			t.Errorf("tuple %d hashtags mismatch (-want +got):\n%s", i, diff)
		}
	}
	if got[0].MediaRef != "/generated/s1.png" || got[2].MediaRef != "/generated/s3.png" {
		t.Errorf("refs out of order: %+v", got)
	}
}

func TestContentIndividualSlides(t *testing.T) {
	text := `Slide 1 of 3
A bold opener about savings
![s](/generated/sl1.png)

Slide 2 of 3
Our story continues
![s](/generated/sl2.png)`

	got := Content(text)
	if len(got) != 2 {
		t.Fatalf("got %d tuples, want 2: %+v", len(got), got)
	}
	if got[0].Caption != "A bold opener about savings" {
		t.Errorf("slide 1 caption = %q", got[0].Caption)
	}
	if got[1].Caption != "Our story continues" {
		t.Errorf("slide 2 caption = %q", got[1].Caption)
	}
}

func TestContentStructuredLabels(t *testing.T) {
	text := `Image: /generated/promo.png
Caption: Big day tomorrow
Hashtags: #Launch`

	want := []Tuple{{
		MediaRef: "/generated/promo.png",
		Kind:     KindImage,
		Caption:  "Big day tomorrow",
		Hashtags: []string{"#Launch"},
	}}

	got := Content(text)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Content mismatch (-want +got):\n%s", diff)
	}
}

func TestContentNarrativeIntro(t *testing.T) {
	text := `Here's your post! Take a look:

![final](/generated/final1.png)

Caption: Monday motivation for the team

Hashtags: #Monday`

	got := Content(text)
	if len(got) != 1 {
		t.Fatalf("got %d tuples, want 1: %+v", len(got), got)
	}
	if got[0].MediaRef != "/generated/final1.png" {
		t.Errorf("MediaRef = %q", got[0].MediaRef)
	}
	if got[0].Caption != "Monday motivation for the team" {
		t.Errorf("Caption = %q", got[0].Caption)
	}
}

func TestContentProximity(t *testing.T) {
	text := `/generated/x.png
Caption: Quick update from the studio`

	got := Content(text)
	if len(got) != 1 {
		t.Fatalf("got %d tuples, want 1: %+v", len(got), got)
	}
	if got[0].Caption != "Quick update from the studio" {
		t.Errorf("Caption = %q", got[0].Caption)
	}
	if len(got[0].Hashtags) != 0 {
		t.Errorf("Hashtags = %v, want none", got[0].Hashtags)
	}
}

func TestContentUnpairedFallback(t *testing.T) {
	text := `I generated two files: /generated/a.png and /generated/b.mp4. Enjoy! #Fun`

	got := Content(text)
	if len(got) != 2 {
		t.Fatalf("got %d tuples, want 2: %+v", len(got), got)
	}
	if got[0].Kind != KindImage || got[1].Kind != KindVideo {
		t.Errorf("kinds = %q, %q", got[0].Kind, got[1].Kind)
	}
	for i, tu := range got {
		if diff := cmp.Diff([]string{"#Fun"}, tu.Hashtags); diff != "" {
			t.Errorf("tuple %d hashtags mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestContentNoReferences(t *testing.T) {
	if got := Content("just chatting about strategy, nothing generated"); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestContentHashtagOnlyCaption(t *testing.T) {
	// A caption that is nothing but hashtags belongs to the hashtag set,
	// not the caption field.
	text := `/generated/z.png
Caption: #One #Two`

	got := Content(text)
	if len(got) != 1 {
		t.Fatalf("got %d tuples, want 1: %+v", len(got), got)
	}
	if got[0].Caption != "" {
		t.Errorf("Caption = %q, want empty", got[0].Caption)
	}
	if diff := cmp.Diff([]string{"#One", "#Two"}, got[0].Hashtags); diff != "" {
		t.Errorf("hashtags mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic tags",
			in:   "love it #Coffee #Summer",
			want: []string{"#Coffee", "#Summer"},
		},
		{
			name: "case-insensitive dedup keeps first spelling",
			in:   "#Sale #sale #SALE #deal",
			want: []string{"#Sale", "#deal"},
		},
		{
			name: "must start with a letter",
			in:   "#1cheap #_x #ok",
			want: []string{"#ok"},
		},
		{
			name: "underscores and digits allowed after",
			in:   "#summer_2026",
			want: []string{"#summer_2026"},
		},
		{
			name: "none",
			in:   "no tags here",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHashtags(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseHashtags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHashtagsCap(t *testing.T) {
	var in string
	for i := 0; i < 40; i++ {
		in += "#tag" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + " "
	}
	got := ParseHashtags(in)
	if len(got) != MaxHashtags {
		t.Errorf("got %d tags, want cap of %d", len(got), MaxHashtags)
	}
}
