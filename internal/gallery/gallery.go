// Package gallery owns the reconciled collection of generated content
// items for one session. All mutation goes through Reconcile (or Reset);
// the collection is keyed by media reference and ordered by first
// insertion. Display order (newest first) is a view over that storage
// order, never a reordering of it.
package gallery

import (
	"fmt"
	"strings"
	"time"
)

// MaxCaptionLen bounds a caption at ingestion.
const MaxCaptionLen = 800

// MaxHashtags bounds the hashtag set of one item.
const MaxHashtags = 25

// Item is one generated media asset shown in the gallery.
type Item struct {
	MediaRef  string    `json:"media_ref"`
	Kind      string    `json:"kind"` // "image" or "video"
	Caption   string    `json:"caption"`
	Hashtags  []string  `json:"hashtags"`
	CreatedAt time.Time `json:"created_at"`
}

// Update is one extraction tuple to merge into the collection.
type Update struct {
	MediaRef string
	Kind     string
	Caption  string
	Hashtags []string
}

// Change records what Reconcile did for one media reference.
type Change struct {
	MediaRef string
	Created  bool // false means an existing item was patched
}

// Manager reconciles extraction output into the persistent item
// collection. Single writer: callers never mutate items directly.
type Manager struct {
	items []Item
	index map[string]int
	save  func(items []Item) error
	now   func() time.Time
}

// NewManager returns an empty manager. save is invoked with the full
// snapshot after every applied change; a nil save disables persistence.
func NewManager(save func(items []Item) error) *Manager {
	return &Manager{
		index: make(map[string]int),
		save:  save,
		now:   time.Now,
	}
}

// Restore loads a previously persisted snapshot verbatim, without
// re-running any extraction. It replaces the current collection.
func (m *Manager) Restore(items []Item) {
	m.items = make([]Item, len(items))
	m.index = make(map[string]int, len(items))
	for i, it := range items {
		it.Caption = truncateCaption(it.Caption)
		it.Hashtags = capHashtags(it.Hashtags)
		m.items[i] = it
		m.index[it.MediaRef] = i
	}
}

// Reconcile merges extraction tuples into the collection: unseen media
// references insert a new item; known ones are patched in place, and a
// populated caption or hashtag set is never overwritten by an empty one.
// The snapshot is persisted once per call when anything changed.
func (m *Manager) Reconcile(updates []Update) ([]Change, error) {
	var changes []Change

	for _, u := range updates {
		if u.MediaRef == "" {
			continue
		}
		caption := truncateCaption(u.Caption)
		tags := capHashtags(u.Hashtags)

		if i, ok := m.index[u.MediaRef]; ok {
			patched := false
			if caption != "" && m.items[i].Caption != caption {
				m.items[i].Caption = caption
				patched = true
			}
			if len(tags) > 0 && !sameTags(m.items[i].Hashtags, tags) {
				m.items[i].Hashtags = tags
				patched = true
			}
			if patched {
				changes = append(changes, Change{MediaRef: u.MediaRef})
			}
			continue
		}

		m.index[u.MediaRef] = len(m.items)
		m.items = append(m.items, Item{
			MediaRef:  u.MediaRef,
			Kind:      u.Kind,
			Caption:   caption,
			Hashtags:  tags,
			CreatedAt: m.now(),
		})
		changes = append(changes, Change{MediaRef: u.MediaRef, Created: true})
	}

	if len(changes) > 0 && m.save != nil {
		if err := m.save(m.Items()); err != nil {
			return changes, fmt.Errorf("persisting gallery: %w", err)
		}
	}
	return changes, nil
}

// Reset clears the collection atomically and persists the empty snapshot.
func (m *Manager) Reset() error {
	m.items = nil
	m.index = make(map[string]int)
	if m.save != nil {
		if err := m.save(nil); err != nil {
			return fmt.Errorf("persisting gallery reset: %w", err)
		}
	}
	return nil
}

// Items returns the collection in storage (insertion) order.
func (m *Manager) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Display returns the collection newest-first for rendering.
func (m *Manager) Display() []Item {
	out := make([]Item, 0, len(m.items))
	for i := len(m.items) - 1; i >= 0; i-- {
		out = append(out, m.items[i])
	}
	return out
}

// Len reports the number of items.
func (m *Manager) Len() int {
	return len(m.items)
}

// Get looks up an item by media reference.
func (m *Manager) Get(mediaRef string) (Item, bool) {
	i, ok := m.index[mediaRef]
	if !ok {
		return Item{}, false
	}
	return m.items[i], true
}

// MostRecentImage returns the latest-inserted image item, used to
// cross-link captions onto videos animated from it.
func (m *Manager) MostRecentImage() (Item, bool) {
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].Kind == "image" {
			return m.items[i], true
		}
	}
	return Item{}, false
}

func truncateCaption(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxCaptionLen {
		return s
	}
	// Cut on a rune boundary.
	cut := MaxCaptionLen
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}

func capHashtags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == MaxHashtags {
			break
		}
	}
	return out
}

func sameTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
