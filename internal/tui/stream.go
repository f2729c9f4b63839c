package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"postcraft-cli/internal/api"
	"postcraft-cli/internal/pipeline"
	"postcraft-cli/internal/stream"
)

// ─── Messages sent from the stream goroutine to Bubble Tea ──────────────────

type sessionReadyMsg struct {
	sessionID string
}

type firstContentMsg struct{}

type textDeltaMsg struct {
	content string
}

type agentStatusMsg struct {
	message string
}

type agentErrMsg struct {
	message string
}

// turnDoneMsg carries the interpreted turn after the stream reached done.
type turnDoneMsg struct {
	result *pipeline.TurnResult
}

// turnAbortedMsg means the stream ended without a done frame; nothing was
// interpreted and gallery state is untouched.
type turnAbortedMsg struct{}

type streamErrMsg struct {
	err error
}

// ─── Stream command ─────────────────────────────────────────────────────────
//
// Runs the chat turn in a goroutine, forwarding stream events through a
// channel. The returned tea.Cmd reads one message at a time; Update
// dispatches another waitForStream after each one. Interpretation runs in
// the same goroutine, strictly after the stream completes — the UI blocks
// new input until turnDoneMsg, so there is never a second writer on
// session state.

func beginStream(client api.AgentAPI, interp *pipeline.Interpreter, message string) (tea.Cmd, chan tea.Msg) {
	ch := make(chan tea.Msg, 64)

	go func() {
		defer close(ch)

		consumer := stream.NewConsumer(stream.Callbacks{
			OnSession: func(id string) {
				ch <- sessionReadyMsg{sessionID: id}
			},
			OnFirstContent: func() {
				ch <- firstContentMsg{}
			},
			OnDelta: func(content string) {
				ch <- textDeltaMsg{content: content}
			},
			OnStatus: func(msg string) {
				ch <- agentStatusMsg{message: msg}
			},
			OnError: func(msg string) {
				ch <- agentErrMsg{message: msg}
			},
		})

		final, done, err := client.ChatStream(interp.SessionID, message, consumer)
		if err != nil {
			ch <- streamErrMsg{err: err}
			return
		}
		if !done {
			ch <- turnAbortedMsg{}
			return
		}

		result, err := interp.InterpretFinal(final)
		if err != nil {
			ch <- streamErrMsg{err: err}
			return
		}
		ch <- turnDoneMsg{result: result}
	}()

	return waitForStream(ch), ch
}

// waitForStream reads the next message from the channel.
func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
