package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"postcraft-cli/internal/api"
	"postcraft-cli/internal/config"
	"postcraft-cli/internal/envelope"
	"postcraft-cli/internal/logging"
	"postcraft-cli/internal/pipeline"
	"postcraft-cli/internal/store"
)

// ─── App mode ───────────────────────────────────────────────────────────────

type appMode int

const (
	modeIdle appMode = iota
	modeCreatingSession
	modeStreaming
)

// ─── Slash command registry ─────────────────────────────────────────────────

type slashCmd struct {
	name string
	desc string
}

var slashCommands = []slashCmd{
	{"/brand", "Apply a brand preset to this session"},
	{"/clear", "Clear the screen"},
	{"/config", "Show current configuration"},
	{"/gallery", "Show generated content items"},
	{"/help", "Show all commands"},
	{"/new", "Start a fresh session"},
	{"/quit", "Exit Postcraft"},
	{"/reset", "Wipe this session's transcript and gallery"},
	{"/sessions", "List stored sessions"},
}

// ─── Model ──────────────────────────────────────────────────────────────────

type model struct {
	width  int
	height int

	// Bubble Tea components
	input   textinput.Model
	spinner spinner.Model

	// App state
	mode    appMode
	cfg     *config.Config
	client  api.AgentAPI
	st      *store.Store
	interp  *pipeline.Interpreter
	version string
	profile string

	// Streaming state
	streamCh      chan tea.Msg
	partial       strings.Builder // text deltas of the in-flight turn
	status        string          // latest transient status line
	waitingFirst  bool            // pending state until first content
	pendingPrompt string          // message queued while session is created
	streamPrompt  string          // the message currently streaming

	// Interactive affordances from the last completed turn
	pendingChoices []envelope.Choice

	// UI state
	ready        bool
	cmdMenuIdx   int
	cmdMenuOpen  bool
	lastInputVal string

	// Input history
	history      []string
	historyIdx   int
	historySaved string
}

func initialModel(version, profile, resumeSessionID string) (*model, error) {
	ti := textinput.New()
	ti.Placeholder = "Describe the post you want, or type /help..."
	ti.Focus()
	ti.CharLimit = 4096
	ti.Prompt = "❯ "
	ti.PromptStyle = promptSymbol
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorCoral)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorCoral)

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	m := &model{
		input:      ti,
		spinner:    sp,
		cfg:        cfg,
		st:         st,
		version:    version,
		profile:    profile,
		historyIdx: -1,
		cmdMenuIdx: -1,
	}

	if cfg.Server != "" {
		m.client = api.NewClient(cfg)
	}

	if resumeSessionID != "" {
		interp, err := pipeline.New(st, resumeSessionID, logging.L())
		if err != nil {
			return nil, err
		}
		m.interp = interp
	}
	return m, nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tea.Println(m.renderWelcome()))
}

// ─── Update ─────────────────────────────────────────────────────────────────

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionCreatedMsg:
		return m.handleSessionCreated(msg)

	case sessionReadyMsg:
		// The server echoes the session id mid-stream; nothing to do when
		// it matches what we already track.
		return m, waitForStream(m.streamCh)

	case firstContentMsg:
		m.waitingFirst = false
		m.status = ""
		return m, waitForStream(m.streamCh)

	case textDeltaMsg:
		m.partial.WriteString(msg.content)
		return m, waitForStream(m.streamCh)

	case agentStatusMsg:
		m.status = msg.message
		return m, waitForStream(m.streamCh)

	case agentErrMsg:
		return m, tea.Batch(
			tea.Println(errorMsgStyle.Render("  ✗ "+msg.message)),
			waitForStream(m.streamCh),
		)

	case turnDoneMsg:
		return m.handleTurnDone(msg)

	case turnAbortedMsg:
		m.finishStream()
		return m, tea.Println(warnMsgStyle.Render("  ! stream ended before completion — no changes applied"))

	case streamErrMsg:
		m.finishStream()
		return m, tea.Println(errorMsgStyle.Render("  ✗ " + msg.err.Error()))
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {

	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.cmdMenuOpen {
			m.cmdMenuOpen = false
			m.cmdMenuIdx = -1
			return m, nil
		}
		return m, nil

	case "up", "down":
		if m.cmdMenuOpen {
			m.moveMenu(msg.String())
			return m, nil
		}
		m.browseHistory(msg.String())
		return m, nil

	case "tab":
		if m.cmdMenuOpen && m.cmdMenuIdx >= 0 {
			menu := m.filteredCommands()
			if m.cmdMenuIdx < len(menu) {
				m.input.SetValue(menu[m.cmdMenuIdx].name + " ")
				m.input.CursorEnd()
				m.cmdMenuOpen = false
				m.cmdMenuIdx = -1
			}
		}
		return m, nil

	case "enter":
		if m.mode != modeIdle {
			return m, nil
		}
		if m.cmdMenuOpen && m.cmdMenuIdx >= 0 {
			menu := m.filteredCommands()
			if m.cmdMenuIdx < len(menu) {
				m.input.SetValue(menu[m.cmdMenuIdx].name)
			}
			m.cmdMenuOpen = false
			m.cmdMenuIdx = -1
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncCmdMenu()
	return m, cmd
}

func (m *model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.cmdMenuOpen = false
	m.cmdMenuIdx = -1
	m.pushHistory(value)

	if strings.HasPrefix(value, "/") {
		return m.executeSlash(value)
	}

	// A bare number selects one of the last turn's choices; its value is
	// resubmitted verbatim as the next message.
	if n, err := strconv.Atoi(value); err == nil && len(m.pendingChoices) > 0 {
		if n >= 1 && n <= len(m.pendingChoices) {
			choice := m.pendingChoices[n-1]
			return m.sendMessage(choice.Value)
		}
	}

	return m.sendMessage(value)
}

func (m *model) sendMessage(message string) (tea.Model, tea.Cmd) {
	if m.client == nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ server not configured. Run: postcraft set server <url>"))
	}

	echo := tea.Println(userPromptStyle.Render("❯ ") + message)

	if m.interp == nil {
		m.mode = modeCreatingSession
		m.pendingPrompt = message
		return m, tea.Batch(echo, createSession(m.client))
	}
	return m, tea.Batch(echo, m.startTurn(message))
}

type sessionCreatedMsg struct {
	sessionID string
	err       error
}

func createSession(client api.AgentAPI) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.NewSession()
		if err != nil {
			return sessionCreatedMsg{err: err}
		}
		return sessionCreatedMsg{sessionID: resp.SessionID}
	}
}

func (m *model) handleSessionCreated(msg sessionCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.mode = modeIdle
		m.pendingPrompt = ""
		return m, tea.Println(errorMsgStyle.Render("  ✗ creating session: " + msg.err.Error()))
	}

	interp, err := pipeline.New(m.st, msg.sessionID, logging.L())
	if err != nil {
		m.mode = modeIdle
		m.pendingPrompt = ""
		return m, tea.Println(errorMsgStyle.Render("  ✗ " + err.Error()))
	}
	m.interp = interp

	prompt := m.pendingPrompt
	m.pendingPrompt = ""
	return m, m.startTurn(prompt)
}

func (m *model) startTurn(message string) tea.Cmd {
	if err := m.interp.RecordUserMessage(message); err != nil {
		logging.L().Warn("recording user message", zap.Error(err))
	}

	m.mode = modeStreaming
	m.waitingFirst = true
	m.status = ""
	m.partial.Reset()
	m.streamPrompt = message
	m.pendingChoices = nil

	cmd, ch := beginStream(m.client, m.interp, message)
	m.streamCh = ch
	return cmd
}

func (m *model) handleTurnDone(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	m.finishStream()
	m.pendingChoices = msg.result.Choices

	block := m.renderTurn(msg.result)
	return m, tea.Println(block)
}

func (m *model) finishStream() {
	m.mode = modeIdle
	m.waitingFirst = false
	m.status = ""
	m.partial.Reset()
	m.streamCh = nil
	m.streamPrompt = ""
}

// ─── Command menu / history plumbing ────────────────────────────────────────

func (m *model) syncCmdMenu() {
	value := m.input.Value()
	if value != m.lastInputVal {
		m.cmdMenuIdx = -1
	}
	m.lastInputVal = value
	m.cmdMenuOpen = strings.HasPrefix(value, "/") && !strings.Contains(value, " ")
}

func (m *model) filteredCommands() []slashCmd {
	prefix := strings.ToLower(m.input.Value())
	var out []slashCmd
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (m *model) moveMenu(dir string) {
	menu := m.filteredCommands()
	if len(menu) == 0 {
		return
	}
	if dir == "up" {
		m.cmdMenuIdx--
		if m.cmdMenuIdx < 0 {
			m.cmdMenuIdx = len(menu) - 1
		}
	} else {
		m.cmdMenuIdx++
		if m.cmdMenuIdx >= len(menu) {
			m.cmdMenuIdx = 0
		}
	}
}

func (m *model) pushHistory(value string) {
	m.history = append(m.history, value)
	m.historyIdx = -1
	m.historySaved = ""
}

func (m *model) browseHistory(dir string) {
	if len(m.history) == 0 {
		return
	}
	if dir == "up" {
		if m.historyIdx == -1 {
			m.historySaved = m.input.Value()
			m.historyIdx = len(m.history) - 1
		} else if m.historyIdx > 0 {
			m.historyIdx--
		}
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
		return
	}
	// down
	if m.historyIdx == -1 {
		return
	}
	m.historyIdx++
	if m.historyIdx >= len(m.history) {
		m.historyIdx = -1
		m.input.SetValue(m.historySaved)
	} else {
		m.input.SetValue(m.history[m.historyIdx])
	}
	m.input.CursorEnd()
}

