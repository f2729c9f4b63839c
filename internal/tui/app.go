package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run launches the interactive TUI mode (inline chat).
func Run(version, profile, resumeSessionID string) error {
	m, err := initialModel(version, profile, resumeSessionID)
	if err != nil {
		return err
	}
	defer m.st.Close()

	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
