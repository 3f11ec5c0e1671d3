package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swipeit/chatrelay/internal/models"
	"github.com/swipeit/chatrelay/internal/wire"
)

func TestText(t *testing.T) {
	t.Run("PlainText", func(t *testing.T) {
		assert.Equal(t, "hello", Text(models.PlainText{Text: "hello"}))
	})

	t.Run("HTMLWithAnchors", func(t *testing.T) {
		got := Text(models.HTML{Body: `<p>See <a href='http://x.co/a'>here</a></p>`})
		assert.Equal(t, "http://x.co/a", got)
	})

	t.Run("HTMLMultipleAnchors", func(t *testing.T) {
		got := Text(models.HTML{Body: `<a href="http://a.io">a</a> and <a href="http://b.io">b</a>`})
		assert.Equal(t, "http://a.io http://b.io", got)
	})

	t.Run("HTMLWithoutAnchors", func(t *testing.T) {
		got := Text(models.HTML{Body: "<p>Looking forward to <b>Tuesday</b></p>"})
		assert.Equal(t, "Looking forward to Tuesday", got)
	})

	t.Run("Entities", func(t *testing.T) {
		got := Text(models.Entities{URLs: []string{"http://x.co/1", "http://x.co/2"}})
		assert.Equal(t, "http://x.co/1 http://x.co/2", got)
	})

	t.Run("Blocks", func(t *testing.T) {
		got := Text(models.Blocks{Texts: []string{"first", "second"}})
		assert.Equal(t, "first second", got)
	})

	t.Run("UnknownDeepWalk", func(t *testing.T) {
		raw := map[string]any{
			"a": map[string]any{"deep": "buried"},
			"b": []any{"strings", map[string]any{"more": "here"}},
			"n": 42.0,
		}
		assert.Equal(t, "buried strings here", Text(models.Unknown{Raw: raw}))
	})

	t.Run("UnknownEmpty", func(t *testing.T) {
		assert.Equal(t, "", Text(models.Unknown{Raw: map[string]any{"n": 1.0}}))
		assert.Equal(t, "", Text(models.Unknown{}))
	})

	t.Run("NilContent", func(t *testing.T) {
		assert.Equal(t, "", Text(nil))
	})
}

// Every raw shape must normalize without panicking, end to end through the
// wire decoder.
func TestTextTotalOverRawShapes(t *testing.T) {
	shapes := []any{
		"plain string",
		map[string]any{"content": "field content"},
		map[string]any{"text": "text field"},
		map[string]any{"html": `<a href="http://l.ink">x</a>`},
		map[string]any{"html": "<i>no links</i>"},
		map[string]any{"entities": []any{map[string]any{"url": "http://e.nt"}}},
		map[string]any{"blocks": []any{map[string]any{"text": "block text"}}},
		map[string]any{"nested": map[string]any{"really": map[string]any{"deep": "value"}}},
		map[string]any{},
		nil,
		3.14,
	}

	for _, shape := range shapes {
		assert.NotPanics(t, func() {
			_ = Text(wire.DecodeContent(shape))
		})
	}
}

// HTML wins over a plain-text field present in the same record.
func TestHTMLBeatsPlainText(t *testing.T) {
	c := wire.DecodeContent(map[string]any{
		"text": "click the link below",
		"html": `<a href="http://x.co/offer">offer</a>`,
	})
	assert.Equal(t, "http://x.co/offer", Text(c))
}
