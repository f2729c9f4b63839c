package extract

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Choice is one user-selectable option recovered from agent prose. Value
// is the literal string resubmitted as the next user message when chosen.
type Choice struct {
	ID          string
	Icon        string
	Label       string
	Value       string
	Description string
}

// A detection pass is only trusted inside these bounds; 0/1 matches are a
// false positive on prose, and more than 8 is a list, not a menu.
const (
	minChoices = 2
	maxChoices = 8
)

// choiceStrategy contributes candidates to one cumulative result set.
// Unlike the content chain, every strategy runs; dedup is by
// case-insensitive label.
type choiceStrategy struct {
	name string
	fn   func(text string) []Choice
}

var choiceStrategies = []choiceStrategy{
	{"emoji-bold", detectEmojiBold},
	{"emoji-in-bold", detectEmojiInsideBold},
	{"slash-alternatives", detectSlashAlternatives},
	{"invitational-bullets", detectInvitationalBullets},
}

// Choices recovers a bounded option menu from free text. Returns nil when
// the deduplicated candidate set falls outside the 2–8 bound.
func Choices(text string) []Choice {
	seen := make(map[string]bool)
	var out []Choice

	for _, s := range choiceStrategies {
		for _, c := range s.fn(text) {
			key := strings.ToLower(c.Label)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}

	if len(out) < minChoices || len(out) > maxChoices {
		if len(out) > 0 {
			log.Debug("choice detection discarded as noise", zap.Int("candidates", len(out)))
		}
		return nil
	}
	return out
}

// ─── Strategy 1: emoji outside the bold span ────────────────────────────────

// "✅ **Yes** — looks great" — optionally bulleted, dash/colon then an
// optional description.
var emojiBoldRe = regexp.MustCompile(`(?m)^\s*(?:[-•*]\s*)?([^\s*]{1,8})\s+\*\*([^*\n]+)\*\*\s*(?:[-–—:]\s*([^\n]+))?$`)

func detectEmojiBold(text string) []Choice {
	var out []Choice
	for _, m := range emojiBoldRe.FindAllStringSubmatch(text, -1) {
		icon, label, desc := m[1], strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
		if !isGlyph(icon) || label == "" {
			continue
		}
		out = append(out, Choice{
			ID:          choiceID(label),
			Icon:        icon,
			Label:       label,
			Value:       strings.ToLower(label),
			Description: desc,
		})
	}
	return out
}

// ─── Strategy 2: emoji inside the bold span (legacy form) ───────────────────

// "**✅ Yes** — looks great" — the leading emoji is stripped from the label.
var boldOptionRe = regexp.MustCompile(`(?m)^\s*(?:[-•*]\s*)?\*\*([^\s*]{1,8})\s+([^*\n]+)\*\*\s*(?:[-–—:]\s*([^\n]+))?$`)

func detectEmojiInsideBold(text string) []Choice {
	var out []Choice
	for _, m := range boldOptionRe.FindAllStringSubmatch(text, -1) {
		icon, label, desc := m[1], strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
		if !isGlyph(icon) || label == "" {
			continue
		}
		out = append(out, Choice{
			ID:          choiceID(label),
			Icon:        icon,
			Label:       label,
			Value:       strings.ToLower(label),
			Description: desc,
		})
	}
	return out
}

// ─── Strategy 3: parenthesized slash alternatives ───────────────────────────

// "(yes / tweak something / skip)" — each segment becomes a choice with an
// inferred icon and no description.
var slashAltRe = regexp.MustCompile(`\(([^()\n]+/[^()\n]+)\)`)

func detectSlashAlternatives(text string) []Choice {
	var out []Choice
	for _, m := range slashAltRe.FindAllStringSubmatch(text, -1) {
		body := m[1]
		// Paths and URLs also carry slashes inside parentheses.
		if strings.Contains(body, "/generated/") || strings.Contains(body, "://") {
			continue
		}
		segments := strings.Split(body, "/")
		if len(segments) < minChoices {
			continue
		}
		valid := true
		for _, seg := range segments {
			seg = strings.TrimSpace(seg)
			if seg == "" || len(seg) > 40 {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		for _, seg := range segments {
			label := strings.TrimSpace(seg)
			out = append(out, Choice{
				ID:    choiceID(label),
				Icon:  IconFor(label),
				Label: label,
				Value: strings.ToLower(label),
			})
		}
	}
	return out
}

// ─── Strategy 4: invitational bulleted list ─────────────────────────────────

var invitationRe = regexp.MustCompile(`(?i)\b(?:would you like to|options|you can)\b`)
var bulletLineRe = regexp.MustCompile(`(?m)^\s*[-•*]\s+(.+)$`)

// A bulleted list counts as a menu only when introduced by an invitational
// phrase. Each bullet is trimmed at its first dash.
func detectInvitationalBullets(text string) []Choice {
	loc := invitationRe.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	var out []Choice
	for _, m := range bulletLineRe.FindAllStringSubmatch(text[loc[1]:], -1) {
		label := strings.TrimSpace(m[1])
		for _, sep := range []string{" - ", " – ", " — "} {
			if idx := strings.Index(label, sep); idx >= 0 {
				label = label[:idx]
				break
			}
		}
		label = strings.TrimSpace(strings.Trim(label, "*_"))
		if label == "" || len(label) > 60 || strings.Count(label, " ") > 6 {
			continue
		}
		out = append(out, Choice{
			ID:    choiceID(label),
			Icon:  IconFor(label),
			Label: label,
			Value: strings.ToLower(label),
		})
	}
	return out
}

// ─── Icon inference ─────────────────────────────────────────────────────────

// Keyword order matters: earlier entries win when a label carries several
// keywords.
var iconKeywords = []struct {
	keyword string
	icon    string
}{
	{"yes", "✅"},
	{"approve", "✅"},
	{"confirm", "✅"},
	{"no", "❌"},
	{"cancel", "❌"},
	{"reject", "❌"},
	{"skip", "⏭️"},
	{"edit", "✏️"},
	{"tweak", "✏️"},
	{"change", "✏️"},
	{"video", "🎬"},
	{"animate", "🎬"},
	{"animation", "🎬"},
	{"generate", "✨"},
	{"create", "✨"},
	{"download", "⬇️"},
	{"idea", "💡"},
	{"suggest", "💡"},
	{"done", "🎉"},
	{"new", "🆕"},
	{"campaign", "📢"},
	{"carousel", "🎠"},
	{"caption", "📝"},
	{"hashtag", "#️⃣"},
}

// IconFor maps a choice label to a glyph by keyword; unknown labels get no
// icon.
func IconFor(label string) string {
	lower := strings.ToLower(label)
	for _, kw := range iconKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.icon
		}
	}
	return ""
}

// isGlyph reports whether s looks like an emoji/symbol prefix rather than
// a word.
func isGlyph(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.So, unicode.Sk) || r >= 0x1F000 {
			return true
		}
	}
	return false
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)
var spaceRunRe = regexp.MustCompile(`\s+`)

// choiceID derives a stable identifier from a label.
func choiceID(label string) string {
	id := nonAlnumRe.ReplaceAllString(strings.ToLower(label), "")
	id = spaceRunRe.ReplaceAllString(strings.TrimSpace(id), "_")
	if len(id) > 30 {
		id = id[:30]
	}
	return id
}
