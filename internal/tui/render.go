package tui

import (
	"fmt"
	"strings"

	"postcraft-cli/internal/display"
	"postcraft-cli/internal/envelope"
	"postcraft-cli/internal/gallery"
	"postcraft-cli/internal/pipeline"
)

// ─── View ───────────────────────────────────────────────────────────────────

func (m *model) View() string {
	if !m.ready {
		return ""
	}

	var b strings.Builder

	switch m.mode {
	case modeCreatingSession:
		b.WriteString("  " + m.spinner.View() + dimStyle.Render(" starting session..."))
		b.WriteString("\n")

	case modeStreaming:
		if m.waitingFirst {
			b.WriteString("  " + m.spinner.View() + dimStyle.Render(" thinking..."))
		} else if m.status != "" {
			b.WriteString("  " + m.spinner.View() + " " + statusStyle.Render(m.status))
		} else {
			b.WriteString(m.renderPartial())
		}
		b.WriteString("\n")

	default:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.cmdMenuOpen {
			b.WriteString(m.renderCmdMenu())
		} else {
			b.WriteString(m.renderHintBar())
		}
	}

	return b.String()
}

// renderPartial shows the tail of the in-flight response so long turns
// feel alive without repainting the full buffer every tick.
func (m *model) renderPartial() string {
	text := m.partial.String()
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	const tail = 6
	if len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("  " + dimStyle.Render(display.Snippet(line, width)) + "\n")
	}
	b.WriteString("  " + m.spinner.View())
	return b.String()
}

func (m *model) renderHintBar() string {
	hints := []string{"/ commands", "enter send", "ctrl+c quit"}
	if len(m.pendingChoices) > 0 {
		hints = append([]string{fmt.Sprintf("1-%d pick option", len(m.pendingChoices))}, hints...)
	}
	return hintBarStyle.Render("  " + strings.Join(hints, "  ·  "))
}

func (m *model) renderCmdMenu() string {
	menu := m.filteredCommands()
	if len(menu) == 0 {
		return hintBarStyle.Render("  no matching command")
	}
	var b strings.Builder
	for i, c := range menu {
		name, desc := cmdNameStyle, cmdDescStyle
		if i == m.cmdMenuIdx {
			name, desc = cmdSelectedNameStyle, cmdSelectedDescStyle
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			name.Render(fmt.Sprintf("%-10s", c.name)),
			desc.Render(c.desc)))
	}
	return b.String()
}

// ─── Welcome ────────────────────────────────────────────────────────────────

func (m *model) renderWelcome() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + logoMarkStyle.Render("◆") + " " + logoTitleStyle.Render("Postcraft") + " " + versionStyle.Render("v"+m.version))
	if m.profile != "" {
		b.WriteString(versionStyle.Render("  [" + m.profile + "]"))
	}
	b.WriteString("\n")
	b.WriteString("  " + welcomeHintStyle.Render("Marketing content agent. Describe a post, or type / for commands."))
	b.WriteString("\n")
	if m.interp != nil {
		b.WriteString("  " + dimStyle.Render("resumed session "+m.interp.SessionID) + "\n")
		if n := m.interp.Gallery().Len(); n > 0 {
			b.WriteString("  " + dimStyle.Render(fmt.Sprintf("%d item(s) restored", n)) + "\n")
		}
	}
	if m.client == nil {
		b.WriteString("  " + warnMsgStyle.Render("! server not configured — run: postcraft set server <url>") + "\n")
	}
	return b.String()
}

// ─── Turn output ────────────────────────────────────────────────────────────

// renderTurn formats one completed agent turn for the scrollback: response
// text, then any gallery changes, then the numbered option list.
func (m *model) renderTurn(result *pipeline.TurnResult) string {
	var b strings.Builder
	width := m.width - 4
	if width < 40 {
		width = 76
	}

	for _, line := range strings.Split(strings.TrimSpace(result.Text), "\n") {
		b.WriteString("  " + line + "\n")
	}

	if len(result.Changes) > 0 {
		b.WriteString("\n")
		for _, ch := range result.Changes {
			verb := "updated"
			if ch.Created {
				verb = "added"
			}
			b.WriteString("  " + successMsgStyle.Render("✓ "+verb+" ") + dimStyle.Render(ch.MediaRef) + "\n")
		}
	}

	if len(result.Choices) > 0 {
		b.WriteString("\n" + renderChoices(result.Choices))
	}

	if result.Envelope != nil && result.Envelope.InputHint != "" {
		b.WriteString("  " + dimStyle.Render(result.Envelope.InputHint) + "\n")
	}

	b.WriteString(separatorStyle.Render("  " + strings.Repeat("─", min(width, 60))))
	return b.String()
}

func renderChoices(choices []envelope.Choice) string {
	var b strings.Builder
	for i, c := range choices {
		icon := c.Icon
		if icon != "" {
			icon += " "
		}
		b.WriteString(fmt.Sprintf("  %s %s%s",
			choiceLabelStyle.Render(fmt.Sprintf("%d.", i+1)),
			icon,
			choiceLabelStyle.Render(c.Label)))
		if c.Description != "" {
			b.WriteString("  " + choiceDescStyle.Render(c.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ─── Gallery panel ──────────────────────────────────────────────────────────

func renderGallery(items []gallery.Item) string {
	var b strings.Builder
	b.WriteString(galleryHeaderStyle.Render("  Gallery") + dimStyle.Render(fmt.Sprintf("  (%d items, newest first)", len(items))) + "\n")
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("  nothing generated yet") + "\n")
		return b.String()
	}
	for _, it := range items {
		b.WriteString(fmt.Sprintf("  %s %s\n", display.KindLabel(it.Kind), it.MediaRef))
		if it.Caption != "" {
			b.WriteString("     " + display.Snippet(it.Caption, 70) + "\n")
		}
		if len(it.Hashtags) > 0 {
			b.WriteString("     " + hashtagStyle.Render(strings.Join(it.Hashtags, " ")) + "\n")
		}
		b.WriteString("     " + dimStyle.Render(display.FormatTime(it.CreatedAt)) + "\n")
	}
	return b.String()
}
