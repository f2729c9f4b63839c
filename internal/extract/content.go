package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Tuple is one recovered (media reference, caption, hashtag set) pairing.
type Tuple struct {
	MediaRef string
	Kind     Kind
	Caption  string
	Hashtags []string
}

// MaxHashtags caps the hashtag set carried by one tuple.
const MaxHashtags = 25

var log = zap.NewNop()

// SetLogger routes extraction diagnostics (rejected references, strategy
// hits) to the given logger. The default is a nop.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// contentStrategy is one heuristic pattern-matcher in the fallback chain.
// Strategies are pure: same text in, same tuples out.
type contentStrategy struct {
	name string
	fn   func(text string) []Tuple
}

// Ordered by priority. The chain stops at the first strategy that yields
// at least one tuple.
var contentStrategies = []contentStrategy{
	{"labeled-post", extractLabeledPosts},
	{"carousel-complete", extractCarousel},
	{"individual-slides", extractSlides},
	{"structured-label", extractStructuredLabels},
	{"narrative-intro", extractNarrativeIntro},
	{"generic-proximity", extractProximity},
}

// Content runs the fallback extraction chain over free text. When every
// strategy misses, the no-pairing fallback scans for bare references and
// pairs them with whatever caption/hashtags the text holds anywhere.
func Content(text string) []Tuple {
	for _, s := range contentStrategies {
		if tuples := dedupeTuples(s.fn(text)); len(tuples) > 0 {
			log.Debug("content strategy matched",
				zap.String("strategy", s.name),
				zap.Int("tuples", len(tuples)))
			return tuples
		}
	}
	return dedupeTuples(extractUnpaired(text))
}

// dedupeTuples drops later tuples that repeat an earlier mediaRef.
func dedupeTuples(tuples []Tuple) []Tuple {
	if len(tuples) < 2 {
		return tuples
	}
	seen := make(map[string]bool, len(tuples))
	out := tuples[:0]
	for _, t := range tuples {
		if seen[t.MediaRef] {
			continue
		}
		seen[t.MediaRef] = true
		out = append(out, t)
	}
	return out
}

// ─── Strategy 1: labeled post ───────────────────────────────────────────────

// "✅ Post 1 created!" followed by the image, a caption section, and
// trailing hashtags inside a bounded lookahead window.
var postHeaderRe = regexp.MustCompile(`(?i)\bpost\s+(\d+)\b[^\n]{0,60}?\b(?:created|ready|complete|completed|done|generated)\b`)

const postLookahead = 900

func extractLabeledPosts(text string) []Tuple {
	headers := postHeaderRe.FindAllStringIndex(text, -1)
	if headers == nil {
		return nil
	}

	var tuples []Tuple
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		if end > h[1]+postLookahead {
			end = h[1] + postLookahead
		}
		window := text[h[1]:end]

		ref := firstImageRef(window)
		if ref == "" {
			continue
		}
		tuples = append(tuples, Tuple{
			MediaRef: ref,
			Kind:     KindOf(ref),
			Caption:  captionIn(window),
			Hashtags: hashtagsIn(window),
		})
	}
	return tuples
}

// ─── Strategy 2: completed carousel ─────────────────────────────────────────

var carouselDoneRe = regexp.MustCompile(`(?i)carousel\s+complete`)

// isCarouselComplete reports a finished carousel: either the explicit
// marker phrase or the co-occurrence of slide/headline/image markers.
func isCarouselComplete(text string) bool {
	if carouselDoneRe.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "slide") &&
		strings.Contains(lower, "headline") &&
		strings.Contains(lower, "image")
}

// A completed carousel shares one caption and one hashtag set across every
// slide. All distinct image references anywhere in the text (table cells,
// markdown links, inline labels) belong to it.
func extractCarousel(text string) []Tuple {
	if !isCarouselComplete(text) {
		return nil
	}

	refs := FindImageRefs(text)
	if len(refs) == 0 {
		return nil
	}

	caption := captionIn(text)
	tags := hashtagsIn(text)

	tuples := make([]Tuple, 0, len(refs))
	for _, ref := range refs {
		tuples = append(tuples, Tuple{
			MediaRef: ref,
			Kind:     KindOf(ref),
			Caption:  caption,
			Hashtags: tags,
		})
	}
	return tuples
}

// ─── Strategy 3: individual slides in progress ──────────────────────────────

var slideMarkerRe = regexp.MustCompile(`(?i)\bslide\s+(\d+)\s+of\s+(\d+)\b`)

const slideLookahead = 400

// Slides still being produced carry no shared caption; each marker pairs
// with a nearby image and an optional one-line description.
func extractSlides(text string) []Tuple {
	markers := slideMarkerRe.FindAllStringIndex(text, -1)
	if markers == nil {
		return nil
	}

	var tuples []Tuple
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		if end > m[1]+slideLookahead {
			end = m[1] + slideLookahead
		}
		window := text[m[1]:end]

		ref := firstImageRef(window)
		if ref == "" {
			continue
		}
		tuples = append(tuples, Tuple{
			MediaRef: ref,
			Kind:     KindOf(ref),
			Caption:  slideDescription(window, ref),
		})
	}
	return tuples
}

// slideDescription picks the first contentful line of the window that is
// not the reference itself and not a label line.
func slideDescription(window, ref string) string {
	for _, line := range strings.Split(window, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*_:- "))
		if line == "" || strings.Contains(line, ref) || strings.Contains(line, "/generated/") {
			continue
		}
		if labelPrefixRe.MatchString(line) || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}
		return line
	}
	return ""
}

// ─── Strategy 4: explicit Image:/Caption: labels ────────────────────────────

var imageLabelRe = regexp.MustCompile(`(?im)^\s*(?:\*\*)?image(?:\s+\d+)?(?:\*\*)?\s*:\s*(.+)$`)

func extractStructuredLabels(text string) []Tuple {
	matches := imageLabelRe.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil
	}

	var tuples []Tuple
	for i, m := range matches {
		ref := NormalizeRef(text[m[2]:m[3]])
		if ref == "" {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		window := text[m[1]:end]
		tuples = append(tuples, Tuple{
			MediaRef: ref,
			Kind:     KindOf(ref),
			Caption:  captionIn(window),
			Hashtags: hashtagsIn(window),
		})
	}
	return tuples
}

// ─── Strategy 5: narrative introduction ─────────────────────────────────────

var narrativeIntroRe = regexp.MustCompile(`(?i)\bhere(?:'s|\s+is)\s+(?:your|the)\s+(?:post|image|graphic|design|visual|content)\b`)

const narrativeLookahead = 900

func extractNarrativeIntro(text string) []Tuple {
	loc := narrativeIntroRe.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	end := len(text)
	if end > loc[1]+narrativeLookahead {
		end = loc[1] + narrativeLookahead
	}
	window := text[loc[1]:end]

	ref := firstImageRef(window)
	if ref == "" {
		return nil
	}
	return []Tuple{{
		MediaRef: ref,
		Kind:     KindOf(ref),
		Caption:  captionIn(window),
		Hashtags: hashtagsIn(window),
	}}
}

// ─── Strategy 6: generic proximity ──────────────────────────────────────────

var captionLabelRe = regexp.MustCompile(`(?i)\*{0,2}caption\*{0,2}\s*:`)

const proximityRadius = 200

// Last resort: any image reference within ~200 characters of a Caption:
// label.
func extractProximity(text string) []Tuple {
	var tuples []Tuple
	for _, loc := range captionLabelRe.FindAllStringIndex(text, -1) {
		start := loc[0] - proximityRadius
		if start < 0 {
			start = 0
		}
		end := loc[1] + proximityRadius
		if end > len(text) {
			end = len(text)
		}

		ref := firstImageRef(text[start:end])
		if ref == "" {
			continue
		}
		tuples = append(tuples, Tuple{
			MediaRef: ref,
			Kind:     KindOf(ref),
			Caption:  captionAt(text, loc[1]),
			Hashtags: hashtagsIn(text),
		})
	}
	return tuples
}

// ─── No-pairing fallback ────────────────────────────────────────────────────

// extractUnpaired handles text where no pairing strategy matched: every
// bare reference is collected and paired with whatever caption block and
// hashtags exist anywhere in the text.
func extractUnpaired(text string) []Tuple {
	refs := FindRefs(text)
	if len(refs) == 0 {
		return nil
	}

	caption := captionIn(text)
	tags := hashtagsIn(text)

	tuples := make([]Tuple, 0, len(refs))
	for _, ref := range refs {
		tuples = append(tuples, Tuple{
			MediaRef: ref,
			Kind:     KindOf(ref),
			Caption:  caption,
			Hashtags: tags,
		})
	}
	return tuples
}

// ─── Shared helpers ─────────────────────────────────────────────────────────

func firstImageRef(text string) string {
	refs := FindImageRefs(text)
	if len(refs) == 0 {
		return ""
	}
	return refs[0]
}

var hashtagRe = regexp.MustCompile(`#[A-Za-z][A-Za-z0-9_]*`)
var hashtagsLabelRe = regexp.MustCompile(`(?i)\*{0,2}hashtags?\*{0,2}\s*:`)

// ParseHashtags pulls every well-formed hashtag token out of s,
// insertion-ordered, deduplicated, capped at MaxHashtags.
func ParseHashtags(s string) []string {
	matches := hashtagRe.FindAllString(s, -1)
	if matches == nil {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var tags []string
	for _, tag := range matches {
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
		if len(tags) == MaxHashtags {
			break
		}
	}
	return tags
}

// hashtagsIn prefers the tags under an explicit Hashtags: label, falling
// back to any tags present in the text.
func hashtagsIn(text string) []string {
	if loc := hashtagsLabelRe.FindStringIndex(text); loc != nil {
		section := text[loc[1]:]
		if idx := strings.Index(section, "\n\n"); idx >= 0 {
			section = section[:idx]
		}
		if tags := ParseHashtags(section); tags != nil {
			return tags
		}
	}
	return ParseHashtags(text)
}

// captionIn locates the first Caption: label and returns its text.
func captionIn(text string) string {
	loc := captionLabelRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return captionAt(text, loc[1])
}

// Labels and markers that terminate a caption section.
var captionStopRe = regexp.MustCompile(`(?i)\n\s*(?:\*{0,2}hashtags?\*{0,2}\s*:|\*{0,2}image(?:\s+\d+)?\*{0,2}\s*:|post\s+\d+|slide\s+\d+|---)`)

// captionAt reads the caption section starting right after a Caption:
// label at offset idx: up to the first blank line, a terminating label, or
// end of text. Wrapping quotes and emphasis are stripped.
func captionAt(text string, idx int) string {
	rest := text[idx:]

	if stop := captionStopRe.FindStringIndex(rest); stop != nil {
		rest = rest[:stop[0]]
	}

	// The caption may start on the label line or on the next line; either
	// way it ends at the first blank line of actual content.
	rest = strings.TrimLeft(rest, " \t\r\n")
	if idx := strings.Index(rest, "\n\n"); idx >= 0 {
		rest = rest[:idx]
	}

	rest = strings.TrimSpace(rest)
	rest = strings.Trim(rest, "*_")
	rest = strings.Trim(rest, `"“”`)
	rest = strings.TrimSpace(rest)

	// A caption that is just a hashtag run belongs to the hashtag set.
	if rest != "" && strings.TrimSpace(hashtagRe.ReplaceAllString(rest, "")) == "" {
		return ""
	}
	return rest
}
