package normalize

import "regexp"

// Segment is one run of a normalized string: either literal text or a
// clickable link.
type Segment struct {
	Text string `json:"text"`
	Link bool   `json:"link"`
}

var linkRe = regexp.MustCompile(`(?:https?://|www\.)[^\s]+`)

// Linkify splits a normalized string into text and link segments. The input
// is not mutated; concatenating the segment texts reproduces it exactly.
func Linkify(s string) []Segment {
	if s == "" {
		return nil
	}

	var segs []Segment
	last := 0
	for _, loc := range linkRe.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: s[last:loc[0]]})
		}
		segs = append(segs, Segment{Text: s[loc[0]:loc[1]], Link: true})
		last = loc[1]
	}
	if last < len(s) {
		segs = append(segs, Segment{Text: s[last:]})
	}
	return segs
}
