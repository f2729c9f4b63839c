// Package pipeline turns one completed response buffer into reconciled
// gallery state and interactive choices. The order is fixed: structured
// envelope first; on a miss, the heuristic content extractor and choice
// detector run independently over the same text; extraction output is
// reconciled into the gallery and the result persisted. Interpretation
// only ever runs on a buffer that reached done — an aborted stream leaves
// state untouched.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"postcraft-cli/internal/envelope"
	"postcraft-cli/internal/extract"
	"postcraft-cli/internal/gallery"
	"postcraft-cli/internal/store"
)

// TurnResult is what one agent turn contributed.
type TurnResult struct {
	// Text is the canonical message text for rendering: the envelope's
	// text field when one was recovered, the raw buffer otherwise.
	Text string
	// Envelope is the structured response, when the buffer carried one.
	Envelope *envelope.Response
	// Choices is the interactive option set for this turn: the
	// envelope's explicit choices, or the detector's, or empty.
	Choices []envelope.Choice
	// Changes lists the gallery inserts/patches this turn applied.
	Changes []gallery.Change
}

// Interpreter owns the per-session state flowing through the pipeline.
type Interpreter struct {
	SessionID string

	gallery *gallery.Manager
	store   *store.Store
	log     *zap.Logger
}

// New wires an interpreter to its session, restoring the persisted
// gallery snapshot (no extraction re-runs on restore).
func New(st *store.Store, sessionID string, logger *zap.Logger) (*Interpreter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	it := &Interpreter{
		SessionID: sessionID,
		store:     st,
		log:       logger,
	}
	it.gallery = gallery.NewManager(func(items []gallery.Item) error {
		return st.SaveGallery(sessionID, items)
	})

	items, err := st.LoadGallery(sessionID)
	if err != nil {
		return nil, fmt.Errorf("restoring gallery: %w", err)
	}
	it.gallery.Restore(items)

	if err := st.CreateSession(sessionID, time.Now()); err != nil {
		return nil, err
	}
	return it, nil
}

// Gallery exposes the reconciled item collection.
func (it *Interpreter) Gallery() *gallery.Manager {
	return it.gallery
}

// RecordUserMessage appends a user turn to the persisted transcript.
func (it *Interpreter) RecordUserMessage(content string) error {
	return it.store.AppendMessage(it.SessionID, "user", content)
}

// InterpretFinal processes one completed response buffer. Extraction
// misses are not errors: the worst case is a turn that contributes no new
// gallery items.
func (it *Interpreter) InterpretFinal(buf string) (*TurnResult, error) {
	result := &TurnResult{Text: buf}

	if env, ok := envelope.Parse(buf); ok {
		result.Envelope = env
		result.Text = env.Text
		if env.HasChoices && len(env.Choices) > 0 {
			result.Choices = env.Choices
		}
		it.log.Debug("structured envelope recovered",
			zap.Bool("has_choices", env.HasChoices),
			zap.Int("choices", len(env.Choices)))
	}

	// Image/caption extraction always runs over the canonical text, even
	// when an envelope was present.
	tuples := extract.Content(result.Text)
	tuples = it.inheritVideoCaptions(tuples)

	changes, err := it.gallery.Reconcile(toUpdates(tuples))
	if err != nil {
		return nil, err
	}
	result.Changes = changes

	// Heuristic choice detection only when no envelope supplied choices.
	if result.Envelope == nil {
		result.Choices = toEnvelopeChoices(extract.Choices(result.Text))
	}

	if err := it.store.AppendMessage(it.SessionID, "assistant", result.Text); err != nil {
		return nil, err
	}
	return result, nil
}

// Reset wipes the session's gallery and transcript atomically.
func (it *Interpreter) Reset() error {
	if err := it.store.ResetSession(it.SessionID); err != nil {
		return err
	}
	return it.gallery.Reset()
}

// inheritVideoCaptions cross-links a caption-less video to the most
// recently extracted image: a video is assumed to be an animation of the
// image that immediately preceded it, whether that image arrived in this
// batch or in an earlier turn.
func (it *Interpreter) inheritVideoCaptions(tuples []extract.Tuple) []extract.Tuple {
	var lastImage *extract.Tuple
	for i := range tuples {
		t := &tuples[i]
		if t.Kind == extract.KindImage {
			lastImage = t
			continue
		}
		if t.Kind != extract.KindVideo || t.Caption != "" {
			continue
		}

		if lastImage != nil {
			t.Caption = lastImage.Caption
			if len(t.Hashtags) == 0 {
				t.Hashtags = lastImage.Hashtags
			}
		} else if img, ok := it.gallery.MostRecentImage(); ok {
			t.Caption = img.Caption
			if len(t.Hashtags) == 0 {
				t.Hashtags = img.Hashtags
			}
		}
	}
	return tuples
}

func toUpdates(tuples []extract.Tuple) []gallery.Update {
	updates := make([]gallery.Update, 0, len(tuples))
	for _, t := range tuples {
		updates = append(updates, gallery.Update{
			MediaRef: t.MediaRef,
			Kind:     string(t.Kind),
			Caption:  t.Caption,
			Hashtags: t.Hashtags,
		})
	}
	return updates
}

func toEnvelopeChoices(choices []extract.Choice) []envelope.Choice {
	if len(choices) == 0 {
		return nil
	}
	out := make([]envelope.Choice, 0, len(choices))
	for _, c := range choices {
		out = append(out, envelope.Choice{
			ID:          c.ID,
			Label:       c.Label,
			Value:       c.Value,
			Icon:        c.Icon,
			Description: c.Description,
		})
	}
	return out
}
