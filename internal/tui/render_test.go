package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"postcraft-cli/internal/envelope"
	"postcraft-cli/internal/gallery"
)

// ─── renderChoices ───────────────────────────────────────────────────────────

func TestRenderChoices_NumbersAndLabels(t *testing.T) {
	choices := []envelope.Choice{
		{ID: "yes", Label: "Yes", Value: "yes", Icon: "✅"},
		{ID: "edit", Label: "Edit the copy", Value: "edit the copy", Icon: "✏️", Description: "Change the wording"},
	}
	out := renderChoices(choices)

	for _, want := range []string{"1.", "2.", "Yes", "Edit the copy", "✅", "✏️", "Change the wording"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderChoices output missing %q\nOutput:\n%s", want, out)
		}
	}
}

func TestRenderChoices_NoIconNoDescription(t *testing.T) {
	out := renderChoices([]envelope.Choice{{ID: "a", Label: "Plain", Value: "plain"}})
	if !strings.Contains(out, "1.") || !strings.Contains(out, "Plain") {
		t.Errorf("bare choice should still render number and label, got %q", out)
	}
}

// ─── renderGallery ───────────────────────────────────────────────────────────

func TestRenderGallery_Empty(t *testing.T) {
	out := renderGallery(nil)
	if !strings.Contains(out, "Gallery") {
		t.Errorf("gallery header missing, got %q", out)
	}
	if !strings.Contains(out, "nothing generated yet") {
		t.Errorf("empty gallery should say so, got %q", out)
	}
}

func TestRenderGallery_Items(t *testing.T) {
	items := []gallery.Item{
		{
			MediaRef:  "/generated/coffee_promo.png",
			Kind:      "image",
			Caption:   "Morning blend, fresh from the roaster.",
			Hashtags:  []string{"#coffee", "#morning"},
			CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			MediaRef: "/generated/launch_teaser.mp4",
			Kind:     "video",
		},
	}
	out := renderGallery(items)

	for _, want := range []string{
		"(2 items, newest first)",
		"/generated/coffee_promo.png",
		"/generated/launch_teaser.mp4",
		"Morning blend",
		"#coffee #morning",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderGallery output missing %q\nOutput:\n%s", want, out)
		}
	}
}

// ─── command menu ────────────────────────────────────────────────────────────

func newMenuModel(value string) *model {
	m := &model{input: textinput.New()}
	m.input.SetValue(value)
	return m
}

func TestFilteredCommands_All(t *testing.T) {
	m := newMenuModel("/")
	if got := len(m.filteredCommands()); got != len(slashCommands) {
		t.Errorf("bare slash should list all commands, got %d of %d", got, len(slashCommands))
	}
}

func TestFilteredCommands_Prefix(t *testing.T) {
	m := newMenuModel("/g")
	menu := m.filteredCommands()
	if len(menu) != 1 || menu[0].name != "/gallery" {
		t.Errorf("filteredCommands(/g) = %v, want just /gallery", menu)
	}
}

func TestFilteredCommands_CaseInsensitive(t *testing.T) {
	m := newMenuModel("/GAL")
	menu := m.filteredCommands()
	if len(menu) != 1 || menu[0].name != "/gallery" {
		t.Errorf("filteredCommands(/GAL) = %v, want just /gallery", menu)
	}
}

func TestFilteredCommands_NoMatch(t *testing.T) {
	m := newMenuModel("/zzz")
	if menu := m.filteredCommands(); len(menu) != 0 {
		t.Errorf("expected no matches, got %v", menu)
	}
}

func TestSyncCmdMenu(t *testing.T) {
	tests := []struct {
		name  string
		value string
		open  bool
	}{
		{"slash opens menu", "/", true},
		{"slash prefix opens menu", "/gal", true},
		{"plain text keeps menu closed", "make a post", false},
		{"slash with argument closes menu", "/brand use velora", false},
		{"empty input keeps menu closed", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMenuModel(tt.value)
			m.syncCmdMenu()
			if m.cmdMenuOpen != tt.open {
				t.Errorf("cmdMenuOpen = %v, want %v for input %q", m.cmdMenuOpen, tt.open, tt.value)
			}
		})
	}
}
