package brandkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	presets, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(presets) == 0 {
		t.Fatal("embedded dataset is empty")
	}

	for i := 1; i < len(presets); i++ {
		if strings.ToLower(presets[i-1].Name) > strings.ToLower(presets[i].Name) {
			t.Errorf("presets not sorted: %q before %q", presets[i-1].Name, presets[i].Name)
		}
	}
	for _, p := range presets {
		if p.Name == "" || p.Industry == "" || p.Tone == "" {
			t.Errorf("incomplete preset: %+v", p)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brands.yaml")
	data := `presets:
  - name: Acme
    industry: Testing
    tone: dry
    colors: ["#000000"]
    overview: Makes everything.
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	presets, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "Acme" {
		t.Errorf("presets = %+v", presets)
	}
}

func TestLoadRejectsUnnamedPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brands.yaml")
	data := `presets:
  - industry: Testing
    tone: dry
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for preset with no name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFind(t *testing.T) {
	presets := []Preset{
		{Name: "Velora Coffee"},
		{Name: "Pulsefit"},
	}

	if p, ok := Find(presets, "velora coffee"); !ok || p.Name != "Velora Coffee" {
		t.Errorf("case-insensitive find failed: %+v, %v", p, ok)
	}
	if _, ok := Find(presets, "Unknown Brand"); ok {
		t.Error("found a preset that does not exist")
	}
}

func TestSetupMessage(t *testing.T) {
	p := Preset{
		Name:     "Pulsefit",
		Industry: "Fitness & Wellness",
		Tone:     "energetic",
		Colors:   []string{"#E63946", "#1D3557"},
		Overview: "Boutique HIIT studio.",
	}

	got := p.SetupMessage()
	want := "I've set up my brand: Pulsefit (Fitness & Wellness). Colors: #E63946, #1D3557. Style: energetic. Boutique HIIT studio."
	if got != want {
		t.Errorf("SetupMessage:\n  got:  %q\n  want: %q", got, want)
	}
}

func TestSetupMessageMinimal(t *testing.T) {
	p := Preset{Name: "Bare"}
	if got := p.SetupMessage(); got != "I've set up my brand: Bare." {
		t.Errorf("SetupMessage = %q", got)
	}
}
