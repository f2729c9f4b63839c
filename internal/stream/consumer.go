// Package stream assembles the agent's server-sent event stream into a
// single response buffer. Frames arrive as newline-delimited lines; each
// "data:" line carries a JSON event, optionally preceded by an "event:"
// line naming the type. Decoding is best-effort per line — a malformed
// frame is skipped, never fatal.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Event types the agent emits.
const (
	EventSession = "session"
	EventText    = "text"
	EventStatus  = "status"
	EventError   = "error"
	EventDone    = "done"
)

// Event is one decoded stream frame.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Callbacks receive events as they arrive. Any callback may be nil.
type Callbacks struct {
	// OnSession fires when the server announces the session id.
	OnSession func(sessionID string)
	// OnFirstContent fires exactly once, on the first text delta — or at
	// end of input if no text ever arrived — so the caller can retire a
	// pending/loading state.
	OnFirstContent func()
	// OnDelta fires for each text delta, in arrival order.
	OnDelta func(content string)
	// OnStatus fires for transient progress messages. Status text never
	// joins the response buffer.
	OnStatus func(message string)
	// OnError fires for turn-level error events from the agent.
	OnError func(message string)
}

// Consumer accumulates text deltas into the response buffer.
type Consumer struct {
	cb Callbacks

	buf          strings.Builder
	pendingType  string
	firstContent bool
	done         bool
}

// NewConsumer returns a consumer dispatching to cb.
func NewConsumer(cb Callbacks) *Consumer {
	return &Consumer{cb: cb}
}

// Consume reads the stream to completion (or transport failure) and
// returns the final buffer plus whether a done frame arrived. On a
// transport error the buffer must not be interpreted: only a buffer that
// reached done is complete.
func (c *Consumer) Consume(r io.Reader) (string, bool, error) {
	scanner := bufio.NewScanner(r)
	// Large generated captions can exceed the default token size.
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		c.FeedLine(scanner.Text())
		if c.done {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return "", false, err
	}

	// End of input without any content: retire the pending state anyway.
	c.fireFirstContent()
	return c.buf.String(), c.done, nil
}

// FeedLine decodes one raw line and dispatches the event, if any.
func (c *Consumer) FeedLine(line string) {
	ev, ok := c.decodeLine(line)
	if !ok {
		return
	}
	c.Feed(ev)
}

// Feed applies one decoded event.
func (c *Consumer) Feed(ev Event) {
	switch ev.Type {
	case EventSession:
		if c.cb.OnSession != nil && ev.SessionID != "" {
			c.cb.OnSession(ev.SessionID)
		}
	case EventText:
		c.fireFirstContent()
		c.buf.WriteString(ev.Content)
		if c.cb.OnDelta != nil {
			c.cb.OnDelta(ev.Content)
		}
	case EventStatus:
		if c.cb.OnStatus != nil {
			c.cb.OnStatus(ev.Message)
		}
	case EventError:
		if c.cb.OnError != nil {
			c.cb.OnError(ev.Message)
		}
	case EventDone:
		c.done = true
		c.fireFirstContent()
	}
}

// Done reports whether a done frame has arrived.
func (c *Consumer) Done() bool {
	return c.done
}

// Text returns the buffer accumulated so far.
func (c *Consumer) Text() string {
	return c.buf.String()
}

func (c *Consumer) fireFirstContent() {
	if c.firstContent {
		return
	}
	c.firstContent = true
	if c.cb.OnFirstContent != nil {
		c.cb.OnFirstContent()
	}
}

// decodeLine handles the two frame layouts the backend produces:
// "data: {json}" with a type field in the payload, and "event: <type>"
// followed by a "data: {json}" line. Anything unparseable is skipped.
func (c *Consumer) decodeLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		c.pendingType = ""
		return Event{}, false
	}

	if rest, ok := strings.CutPrefix(line, "event:"); ok {
		c.pendingType = strings.TrimSpace(rest)
		return Event{}, false
	}

	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return Event{}, false
	}

	var ev Event
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &ev); err != nil {
		return Event{}, false
	}
	if ev.Type == "" {
		ev.Type = c.pendingType
	}
	c.pendingType = ""
	if ev.Type == "" {
		return Event{}, false
	}
	return ev, true
}
