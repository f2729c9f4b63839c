package gallery

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testManager(t *testing.T) (*Manager, *[]Item) {
	t.Helper()
	var saved []Item
	m := NewManager(func(items []Item) error {
		saved = items
		return nil
	})
	return m, &saved
}

func TestReconcileInsert(t *testing.T) {
	m, saved := testManager(t)

	changes, err := m.Reconcile([]Update{
		{MediaRef: "/generated/a.png", Kind: "image", Caption: "first", Hashtags: []string{"#One"}},
		{MediaRef: "/generated/b.mp4", Kind: "video"},
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(changes) != 2 || !changes[0].Created || !changes[1].Created {
		t.Errorf("changes = %+v, want two inserts", changes)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
	if len(*saved) != 2 {
		t.Errorf("persisted snapshot has %d items, want 2", len(*saved))
	}

	it, ok := m.Get("/generated/a.png")
	if !ok || it.Caption != "first" || it.Kind != "image" {
		t.Errorf("Get = %+v, %v", it, ok)
	}
	if it.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestReconcilePatch(t *testing.T) {
	m, _ := testManager(t)

	if _, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image"}}); err != nil {
		t.Fatal(err)
	}

	changes, err := m.Reconcile([]Update{
		{MediaRef: "/generated/a.png", Kind: "image", Caption: "found it later", Hashtags: []string{"#Late"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 || changes[0].Created {
		t.Errorf("changes = %+v, want one patch", changes)
	}

	it, _ := m.Get("/generated/a.png")
	if it.Caption != "found it later" {
		t.Errorf("Caption = %q", it.Caption)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, duplicate insert", m.Len())
	}
}

func TestReconcileNeverClearsPopulatedFields(t *testing.T) {
	m, _ := testManager(t)

	if _, err := m.Reconcile([]Update{
		{MediaRef: "/generated/a.png", Kind: "image", Caption: "keep me", Hashtags: []string{"#Keep"}},
	}); err != nil {
		t.Fatal(err)
	}

	// A later turn that mentions the same ref without caption or tags must
	// not wipe what we have.
	changes, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("changes = %+v, want none", changes)
	}

	it, _ := m.Get("/generated/a.png")
	if it.Caption != "keep me" {
		t.Errorf("Caption = %q, was cleared", it.Caption)
	}
	if diff := cmp.Diff([]string{"#Keep"}, it.Hashtags); diff != "" {
		t.Errorf("hashtags mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	m, _ := testManager(t)

	updates := []Update{
		{MediaRef: "/generated/a.png", Kind: "image", Caption: "same", Hashtags: []string{"#Same"}},
	}
	if _, err := m.Reconcile(updates); err != nil {
		t.Fatal(err)
	}
	changes, err := m.Reconcile(updates)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("second identical reconcile produced changes: %+v", changes)
	}
}

func TestReconcileCaptionTruncation(t *testing.T) {
	m, _ := testManager(t)

	long := strings.Repeat("x", MaxCaptionLen+100)
	if _, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image", Caption: long}}); err != nil {
		t.Fatal(err)
	}

	it, _ := m.Get("/generated/a.png")
	if len(it.Caption) != MaxCaptionLen {
		t.Errorf("caption length = %d, want %d", len(it.Caption), MaxCaptionLen)
	}
}

func TestReconcileCaptionTruncationRuneBoundary(t *testing.T) {
	m, _ := testManager(t)

	// Multi-byte runes straddling the cut must not be split.
	long := strings.Repeat("é", MaxCaptionLen)
	if _, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image", Caption: long}}); err != nil {
		t.Fatal(err)
	}

	it, _ := m.Get("/generated/a.png")
	if !strings.HasSuffix(it.Caption, "é") {
		t.Errorf("caption ends mid-rune: %q", it.Caption[len(it.Caption)-4:])
	}
	if len(it.Caption) > MaxCaptionLen {
		t.Errorf("caption length = %d, exceeds %d", len(it.Caption), MaxCaptionLen)
	}
}

func TestReconcileHashtagCap(t *testing.T) {
	m, _ := testManager(t)

	tags := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		tags = append(tags, "#tag"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	tags = append(tags, "#TAGAA") // case-insensitive dup of the first

	if _, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image", Hashtags: tags}}); err != nil {
		t.Fatal(err)
	}

	it, _ := m.Get("/generated/a.png")
	if len(it.Hashtags) != MaxHashtags {
		t.Errorf("got %d hashtags, want cap of %d", len(it.Hashtags), MaxHashtags)
	}
	if it.Hashtags[0] != "#tagaa" {
		t.Errorf("first tag = %q, want original spelling kept", it.Hashtags[0])
	}
}

func TestReconcileSkipsEmptyRef(t *testing.T) {
	m, _ := testManager(t)

	changes, err := m.Reconcile([]Update{{MediaRef: "", Caption: "orphan"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 || m.Len() != 0 {
		t.Errorf("empty ref produced state: changes=%+v len=%d", changes, m.Len())
	}
}

func TestReconcileSaveError(t *testing.T) {
	m := NewManager(func([]Item) error { return errors.New("disk full") })

	_, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image"}})
	if err == nil {
		t.Fatal("expected save error to propagate")
	}
}

func TestDisplayOrder(t *testing.T) {
	m, _ := testManager(t)

	if _, err := m.Reconcile([]Update{
		{MediaRef: "/generated/first.png", Kind: "image"},
		{MediaRef: "/generated/second.png", Kind: "image"},
		{MediaRef: "/generated/third.mp4", Kind: "video"},
	}); err != nil {
		t.Fatal(err)
	}

	items := m.Items()
	if items[0].MediaRef != "/generated/first.png" {
		t.Errorf("storage order wrong: %+v", items)
	}

	disp := m.Display()
	if disp[0].MediaRef != "/generated/third.mp4" || disp[2].MediaRef != "/generated/first.png" {
		t.Errorf("display order wrong: %+v", disp)
	}
}

func TestRestore(t *testing.T) {
	m, saved := testManager(t)

	snapshot := []Item{
		{MediaRef: "/generated/a.png", Kind: "image", Caption: "restored", CreatedAt: time.Now().Add(-time.Hour)},
		{MediaRef: "/generated/b.mp4", Kind: "video"},
	}
	m.Restore(snapshot)

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	it, ok := m.Get("/generated/a.png")
	if !ok || it.Caption != "restored" {
		t.Errorf("Get = %+v, %v", it, ok)
	}
	// Restore is not a mutation; nothing persisted.
	if *saved != nil {
		t.Errorf("Restore persisted a snapshot: %+v", *saved)
	}
}

func TestReset(t *testing.T) {
	m, saved := testManager(t)

	if _, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image"}}); err != nil {
		t.Fatal(err)
	}
	if err := m.Reset(); err != nil {
		t.Fatal(err)
	}

	if m.Len() != 0 {
		t.Errorf("Len = %d after reset", m.Len())
	}
	if *saved != nil {
		t.Errorf("persisted snapshot = %+v, want empty", *saved)
	}
	// The ref can be inserted again cleanly.
	changes, err := m.Reconcile([]Update{{MediaRef: "/generated/a.png", Kind: "image"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 || !changes[0].Created {
		t.Errorf("reinsert after reset: %+v", changes)
	}
}

func TestMostRecentImage(t *testing.T) {
	m, _ := testManager(t)

	if _, ok := m.MostRecentImage(); ok {
		t.Error("empty gallery reported an image")
	}

	if _, err := m.Reconcile([]Update{
		{MediaRef: "/generated/a.png", Kind: "image", Caption: "older"},
		{MediaRef: "/generated/b.png", Kind: "image", Caption: "newer"},
		{MediaRef: "/generated/c.mp4", Kind: "video"},
	}); err != nil {
		t.Fatal(err)
	}

	it, ok := m.MostRecentImage()
	if !ok || it.MediaRef != "/generated/b.png" {
		t.Errorf("MostRecentImage = %+v, %v", it, ok)
	}
}
