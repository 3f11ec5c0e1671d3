// Package normalize turns decoded message content into one canonical display
// string, and splits that string into text/link segments for rendering.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/swipeit/chatrelay/internal/models"
)

var (
	hrefRe = regexp.MustCompile(`href\s*=\s*["']([^"']+)["']`)
	tagRe  = regexp.MustCompile(`<[^>]*>`)
)

// Text reduces content to a single display string. Total: the worst case is
// an empty string, never an error.
func Text(c models.Content) string {
	switch v := c.(type) {
	case models.PlainText:
		return v.Text
	case models.HTML:
		// Links take priority over surrounding prose; if the body carries
		// none, strip the tags and keep the text.
		if links := hrefs(v.Body); len(links) > 0 {
			return strings.Join(links, " ")
		}
		return strings.TrimSpace(tagRe.ReplaceAllString(v.Body, ""))
	case models.Entities:
		return strings.Join(v.URLs, " ")
	case models.Blocks:
		return strings.Join(v.Texts, " ")
	case models.Unknown:
		return strings.Join(walkStrings(v.Raw), " ")
	default:
		return ""
	}
}

// hrefs returns every href attribute value in document order.
func hrefs(html string) []string {
	var out []string
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		out = append(out, m[1])
	}
	return out
}

// walkStrings collects every string value at any depth of a raw decoded
// value. Map keys are visited in sorted order so the result is deterministic.
func walkStrings(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, walkStrings(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, walkStrings(val[k])...)
		}
		return out
	default:
		return nil
	}
}
