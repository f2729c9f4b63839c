// Package brandkit holds named brand presets. A preset is formatted into
// the brand-setup message shape the agent backend parses (Company,
// Industry, Colors, Style) and sent as a regular user turn.
package brandkit

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDataset is the built-in preset collection used when no --file is
// specified.
//
//go:embed presets.yaml
var DefaultDataset []byte

// Preset is one reusable brand profile.
type Preset struct {
	Name     string   `yaml:"name"`
	Industry string   `yaml:"industry"`
	Tone     string   `yaml:"tone"`
	Colors   []string `yaml:"colors"`
	Overview string   `yaml:"overview"`
}

type dataset struct {
	Presets []Preset `yaml:"presets"`
}

// Load reads presets from path, or from the embedded dataset when path is
// empty. Presets come back sorted by name.
func Load(path string) ([]Preset, error) {
	data := DefaultDataset
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading preset file: %w", err)
		}
	}

	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing preset file: %w", err)
	}
	for i, p := range ds.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i+1)
		}
	}

	sort.Slice(ds.Presets, func(i, j int) bool {
		return strings.ToLower(ds.Presets[i].Name) < strings.ToLower(ds.Presets[j].Name)
	})
	return ds.Presets, nil
}

// Find looks up a preset by name, case-insensitively.
func Find(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// SetupMessage renders the preset as the brand-setup message the backend
// recognizes.
func (p Preset) SetupMessage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "I've set up my brand: %s", p.Name)
	if p.Industry != "" {
		fmt.Fprintf(&b, " (%s)", p.Industry)
	}
	b.WriteString(".")
	if len(p.Colors) > 0 {
		fmt.Fprintf(&b, " Colors: %s.", strings.Join(p.Colors, ", "))
	}
	if p.Tone != "" {
		fmt.Fprintf(&b, " Style: %s.", p.Tone)
	}
	if p.Overview != "" {
		fmt.Fprintf(&b, " %s", p.Overview)
	}
	return b.String()
}
