package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Kind classifies a media reference by its file extension.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// mediaRefRe is the canonical grammar a reference must match after
// normalization: /generated/<token>.<ext>.
var mediaRefRe = regexp.MustCompile(`^/generated/[A-Za-z0-9][A-Za-z0-9._-]*\.(?i:png|jpg|jpeg|gif|webp|mp4|webm|mov)$`)

var videoExts = map[string]bool{
	"mp4":  true,
	"webm": true,
	"mov":  true,
}

// markdownLinkRe matches [label](target) and ![alt](target).
var markdownLinkRe = regexp.MustCompile(`!?\[[^\]]*\]\(([^)\s]+)\)`)

// labelPrefixRe strips leading "Image:"/"Video:"/"File:" style labels.
var labelPrefixRe = regexp.MustCompile(`(?i)^(?:image|video|file|media|path|url)\s*:\s*`)

// NormalizeRef canonicalizes a raw media reference candidate: resolves
// markdown-link syntax to its target, strips label prefixes and markdown
// emphasis, URL-decodes, and validates the result against the reference
// grammar. Returns "" when the candidate does not survive validation.
func NormalizeRef(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if m := markdownLinkRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	s = labelPrefixRe.ReplaceAllString(s, "")
	s = strings.Trim(s, "*_`\"'«»“” \t")
	s = strings.TrimRight(s, ".,;:!?)")

	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}

	// A full URL is reduced to its path.
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}

	if !mediaRefRe.MatchString(s) {
		return ""
	}
	return s
}

// KindOf derives the media kind from the extension of a normalized
// reference.
func KindOf(ref string) Kind {
	idx := strings.LastIndexByte(ref, '.')
	if idx < 0 {
		return KindImage
	}
	if videoExts[strings.ToLower(ref[idx+1:])] {
		return KindVideo
	}
	return KindImage
}

// The ad hoc patterns the agent uses to mention a generated file. Each
// produces candidates that still go through NormalizeRef; FindRefs merges
// them into one deduplicated, order-preserving list.
var (
	bareRefRe     = regexp.MustCompile(`/generated/[A-Za-z0-9%][A-Za-z0-9._%-]*\.[A-Za-z0-9]+`)
	mdTargetRefRe = regexp.MustCompile(`!?\[[^\]]*\]\((/generated/[^)\s]+)\)`)
	labeledRefRe  = regexp.MustCompile(`(?im)^\s*(?:image|video|file)\s*:\s*(\S+)`)
)

// FindRefs scans free text for every media reference it can recognize,
// in order of first appearance.
func FindRefs(text string) []string {
	type hit struct {
		pos       int
		candidate string
	}
	var hits []hit

	for _, m := range mdTargetRefRe.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits, hit{m[0], text[m[2]:m[3]]})
	}
	for _, m := range labeledRefRe.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits, hit{m[0], text[m[2]:m[3]]})
	}
	for _, m := range bareRefRe.FindAllStringIndex(text, -1) {
		hits = append(hits, hit{m[0], text[m[0]:m[1]]})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool)
	var refs []string
	for _, h := range hits {
		ref := NormalizeRef(h.candidate)
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

// FindImageRefs is FindRefs restricted to image references.
func FindImageRefs(text string) []string {
	var imgs []string
	for _, ref := range FindRefs(text) {
		if KindOf(ref) == KindImage {
			imgs = append(imgs, ref)
		}
	}
	return imgs
}
