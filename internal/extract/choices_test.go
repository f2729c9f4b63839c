package extract

import (
	"fmt"
	"strings"
	"testing"
)

func TestChoicesEmojiBold(t *testing.T) {
	text := `What would you like to do?

✅ **Yes** — post it
❌ **No** - start over`

	got := Choices(text)
	if len(got) != 2 {
		t.Fatalf("got %d choices, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.Icon != "✅" || first.Label != "Yes" || first.Value != "yes" {
		t.Errorf("first choice = %+v", first)
	}
	if first.Description != "post it" {
		t.Errorf("first description = %q, want %q", first.Description, "post it")
	}
	if first.ID != "yes" {
		t.Errorf("first id = %q, want %q", first.ID, "yes")
	}

	if got[1].Label != "No" || got[1].Description != "start over" {
		t.Errorf("second choice = %+v", got[1])
	}
}

func TestChoicesEmojiInsideBold(t *testing.T) {
	text := `**✅ Approve** — ship it
**✏️ Edit the copy** — tweak wording first`

	got := Choices(text)
	if len(got) != 2 {
		t.Fatalf("got %d choices, want 2: %+v", len(got), got)
	}
	if got[0].Icon != "✅" || got[0].Label != "Approve" {
		t.Errorf("first choice = %+v", got[0])
	}
	if got[1].Label != "Edit the copy" || got[1].Value != "edit the copy" {
		t.Errorf("second choice = %+v", got[1])
	}
	if got[1].ID != "edit_the_copy" {
		t.Errorf("second id = %q, want %q", got[1].ID, "edit_the_copy")
	}
}

func TestChoicesSlashAlternatives(t *testing.T) {
	text := `Ready to continue? (yes / tweak something / skip)`

	got := Choices(text)
	if len(got) != 3 {
		t.Fatalf("got %d choices, want 3: %+v", len(got), got)
	}
	if got[0].Label != "yes" || got[0].Icon != "✅" {
		t.Errorf("first choice = %+v", got[0])
	}
	if got[1].Label != "tweak something" || got[1].Icon != "✏️" {
		t.Errorf("second choice = %+v", got[1])
	}
	if got[2].Label != "skip" || got[2].Icon != "⏭️" {
		t.Errorf("third choice = %+v", got[2])
	}
}

func TestChoicesSlashSkipsPathsAndURLs(t *testing.T) {
	text := `Saved (see /generated/a.png / the original) and docs (https://x.test/a / b)`
	if got := Choices(text); got != nil {
		t.Errorf("got %+v, want nil for paths and urls", got)
	}
}

func TestChoicesInvitationalBullets(t *testing.T) {
	text := `Would you like to:
- Generate a video - bring the post to life
- Create a fresh post
- Done for today`

	got := Choices(text)
	if len(got) != 3 {
		t.Fatalf("got %d choices, want 3: %+v", len(got), got)
	}
	if got[0].Label != "Generate a video" {
		t.Errorf("first label = %q, want description-free label", got[0].Label)
	}
	if got[0].Icon != "🎬" {
		t.Errorf("first icon = %q, want 🎬", got[0].Icon)
	}
	if got[1].Icon != "✨" {
		t.Errorf("second icon = %q, want ✨", got[1].Icon)
	}
	if got[2].Icon != "🎉" {
		t.Errorf("third icon = %q, want 🎉", got[2].Icon)
	}
}

func TestChoicesBulletsWithoutInvitation(t *testing.T) {
	// A plain list with no invitational phrase is content, not a menu.
	text := `Today I did:
- Drafted the campaign
- Rendered two slides`
	if got := Choices(text); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestChoicesBounds(t *testing.T) {
	t.Run("single candidate discarded", func(t *testing.T) {
		text := "✅ **Yes** — only one option"
		if got := Choices(text); got != nil {
			t.Errorf("got %+v, want nil for a single candidate", got)
		}
	})

	t.Run("more than eight discarded", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("You can:\n")
		for i := 0; i < 9; i++ {
			fmt.Fprintf(&b, "- Option number %d\n", i+1)
		}
		if got := Choices(b.String()); got != nil {
			t.Errorf("got %d choices, want nil above the bound", len(got))
		}
	})

	t.Run("exactly eight kept", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("You can:\n")
		for i := 0; i < 8; i++ {
			fmt.Fprintf(&b, "- Option number %d\n", i+1)
		}
		got := Choices(b.String())
		if len(got) != 8 {
			t.Errorf("got %d choices, want 8", len(got))
		}
	})
}

func TestChoicesDedupAcrossStrategies(t *testing.T) {
	text := `✅ **Yes** — go ahead

Or just answer (yes / no)`

	got := Choices(text)
	if len(got) != 2 {
		t.Fatalf("got %d choices, want 2: %+v", len(got), got)
	}
	// The bold form ran first so its spelling wins for the duplicate.
	if got[0].Label != "Yes" {
		t.Errorf("first label = %q, want %q", got[0].Label, "Yes")
	}
	if got[1].Label != "no" {
		t.Errorf("second label = %q, want %q", got[1].Label, "no")
	}
}

func TestIconFor(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Yes please", "✅"},
		{"Cancel that", "❌"},
		{"Skip this one", "⏭️"},
		{"Edit the caption", "✏️"},
		{"Make a video", "🎬"},
		{"Generate more", "✨"},
		{"Download all", "⬇️"},
		{"Give me an idea", "💡"},
		{"Done", "🎉"},
		{"Start a campaign", "📢"},
		{"Build a carousel", "🎠"},
		{"Rewrite the caption", "📝"},
		{"Add hashtags", "#️⃣"},
		{"Something else", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := IconFor(tt.label); got != tt.want {
				t.Errorf("IconFor(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestChoiceID(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Yes", "yes"},
		{"Generate a Video!", "generate_a_video"},
		{"tweak  something", "tweak_something"},
		{"a very long label that keeps going well past thirty characters", "a_very_long_label_that_keeps_g"},
	}

	for _, tt := range tests {
		if got := choiceID(tt.label); got != tt.want {
			t.Errorf("choiceID(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}
