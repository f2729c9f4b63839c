package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"postcraft-cli/internal/brandkit"
	"postcraft-cli/internal/display"
)

// executeSlash dispatches a /command entered at the prompt.
func (m *model) executeSlash(value string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(value)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		return m, tea.Println(m.renderHelp())

	case "/clear":
		return m, tea.Sequence(tea.ClearScreen, tea.Println(m.renderWelcome()))

	case "/config":
		return m, tea.Println(m.renderConfig())

	case "/sessions":
		return m.cmdSessions()

	case "/gallery":
		return m.cmdGallery()

	case "/brand":
		return m.cmdBrand(args)

	case "/reset":
		return m.cmdReset()

	case "/new":
		m.interp = nil
		m.pendingChoices = nil
		return m, tea.Println(successMsgStyle.Render("  ✓ next message starts a fresh session"))

	case "/quit", "/exit":
		return m, tea.Quit
	}

	return m, tea.Println(errorMsgStyle.Render("  ✗ unknown command: " + cmd + "  (try /help)"))
}

func (m *model) renderHelp() string {
	var b strings.Builder
	b.WriteString(galleryHeaderStyle.Render("  Commands") + "\n")
	for _, c := range slashCommands {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			cmdNameStyle.Render(fmt.Sprintf("%-10s", c.name)),
			cmdDescStyle.Render(c.desc)))
	}
	b.WriteString("\n" + dimStyle.Render("  After a turn with options, type its number to pick one.") + "\n")
	return b.String()
}

func (m *model) renderConfig() string {
	var b strings.Builder
	b.WriteString(galleryHeaderStyle.Render("  Configuration") + "\n")
	server := m.cfg.Server
	if server == "" {
		server = "(not set)"
	}
	b.WriteString("  server   " + dimStyle.Render(server) + "\n")
	user := m.cfg.User
	if user == "" {
		user = "default_user"
	}
	b.WriteString("  user     " + dimStyle.Render(user) + "\n")
	b.WriteString("  data     " + dimStyle.Render(m.cfg.DataDir) + "\n")
	if m.profile != "" {
		b.WriteString("  profile  " + dimStyle.Render(m.profile) + "\n")
	}
	if m.interp != nil {
		b.WriteString("  session  " + dimStyle.Render(m.interp.SessionID) + "\n")
	}
	return b.String()
}

func (m *model) cmdSessions() (tea.Model, tea.Cmd) {
	sessions, err := m.st.Sessions()
	if err != nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ " + err.Error()))
	}
	var b strings.Builder
	b.WriteString(galleryHeaderStyle.Render("  Sessions") + dimStyle.Render(fmt.Sprintf("  (%d)", len(sessions))) + "\n")
	if len(sessions) == 0 {
		b.WriteString(dimStyle.Render("  no stored sessions") + "\n")
	}
	for _, s := range sessions {
		marker := "  "
		if m.interp != nil && s.SessionID == m.interp.SessionID {
			marker = successMsgStyle.Render("▸ ")
		}
		b.WriteString(fmt.Sprintf("  %s%s  %s\n", marker, s.SessionID,
			dimStyle.Render(fmt.Sprintf("%d msgs, %d items, %s",
				s.Messages, s.Items, display.FormatTime(s.Created)))))
	}
	b.WriteString("\n" + dimStyle.Render("  resume with: postcraft resume <session-id>") + "\n")
	return m, tea.Println(b.String())
}

func (m *model) cmdGallery() (tea.Model, tea.Cmd) {
	if m.interp == nil {
		return m, tea.Println(dimStyle.Render("  no active session yet"))
	}
	return m, tea.Println(renderGallery(m.interp.Gallery().Display()))
}

func (m *model) cmdBrand(args []string) (tea.Model, tea.Cmd) {
	presets, err := brandkit.Load("")
	if err != nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ " + err.Error()))
	}

	if len(args) == 0 {
		var b strings.Builder
		b.WriteString(galleryHeaderStyle.Render("  Brand presets") + "\n")
		for _, p := range presets {
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				choiceLabelStyle.Render(p.Name),
				dimStyle.Render(p.Industry+", "+p.Tone)))
		}
		b.WriteString("\n" + dimStyle.Render("  apply one with: /brand <name>") + "\n")
		return m, tea.Println(b.String())
	}

	name := strings.Join(args, " ")
	preset, ok := brandkit.Find(presets, name)
	if !ok {
		return m, tea.Println(errorMsgStyle.Render("  ✗ no preset named " + name))
	}
	// The preset is applied by sending its setup message as a normal turn.
	return m.sendMessage(preset.SetupMessage())
}

func (m *model) cmdReset() (tea.Model, tea.Cmd) {
	if m.interp == nil {
		return m, tea.Println(dimStyle.Render("  no active session to reset"))
	}
	if err := m.interp.Reset(); err != nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ " + err.Error()))
	}
	m.pendingChoices = nil
	return m, tea.Println(successMsgStyle.Render("  ✓ session wiped (transcript and gallery)"))
}
