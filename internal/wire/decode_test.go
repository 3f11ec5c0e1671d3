package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/swipeit/chatrelay/internal/models"
)

func TestDecodeConversation(t *testing.T) {
	t.Run("SnakeCaseKeys", func(t *testing.T) {
		rec := DecodeConversation(map[string]any{
			"match_id":     "m1",
			"candidate_id": "C1",
			"recruiter_id": "R1",
			"sender_id":    "R1",
			"receiver_id":  "C1",
		})
		assert.Equal(t, "m1", rec.MatchID)
		assert.Equal(t, "C1", rec.CandidateID)
		assert.Equal(t, "R1", rec.RecruiterID)
		assert.Equal(t, "R1", rec.SenderID)
		assert.Equal(t, "C1", rec.ReceiverID)
	})

	t.Run("CamelCaseKeys", func(t *testing.T) {
		rec := DecodeConversation(map[string]any{
			"matchId":     "m2",
			"candidateId": "C2",
			"companyName": "Acme",
		})
		assert.Equal(t, "m2", rec.MatchID)
		assert.Equal(t, "C2", rec.CandidateID)
		assert.Equal(t, "Acme", rec.RecruiterName)
	})

	t.Run("NumericIDs", func(t *testing.T) {
		rec := DecodeConversation(map[string]any{"match_id": 17.0})
		assert.Equal(t, "17", rec.MatchID)
	})

	t.Run("LastMessagePreview", func(t *testing.T) {
		rec := DecodeConversation(map[string]any{
			"last_message": "see you tomorrow",
		})
		assert.Equal(t, models.PlainText{Text: "see you tomorrow"}, rec.Last)
	})

	t.Run("Empty", func(t *testing.T) {
		rec := DecodeConversation(map[string]any{})
		assert.Equal(t, ConversationRecord{}, rec)
	})
}

func TestDecodeMessage(t *testing.T) {
	t.Run("Timestamps", func(t *testing.T) {
		rfc := DecodeMessage(map[string]any{"created_at": "2026-08-30T10:00:00Z"})
		assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), rfc.CreatedAt)

		millis := DecodeMessage(map[string]any{"ts": 1756548000000.0})
		assert.Equal(t, int64(1756548000), millis.CreatedAt.Unix())

		secs := DecodeMessage(map[string]any{"ts": 1756548000.0})
		assert.Equal(t, int64(1756548000), secs.CreatedAt.Unix())
	})

	t.Run("SenderVariants", func(t *testing.T) {
		for _, key := range []string{"sender_id", "senderId", "from", "from_id"} {
			rec := DecodeMessage(map[string]any{key: "U1"})
			assert.Equal(t, "U1", rec.SenderID, "key %s", key)
		}
	})
}

func TestDecodeContent(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, models.PlainText{Text: "hi"}, DecodeContent("hi"))
	})

	t.Run("PlainTextField", func(t *testing.T) {
		assert.Equal(t, models.PlainText{Text: "hi"}, DecodeContent(map[string]any{"content": "hi"}))
	})

	t.Run("HTMLBeatsText", func(t *testing.T) {
		c := DecodeContent(map[string]any{"text": "prose", "html": "<b>rich</b>"})
		assert.Equal(t, models.HTML{Body: "<b>rich</b>"}, c)
	})

	t.Run("Entities", func(t *testing.T) {
		c := DecodeContent(map[string]any{"entities": []any{
			map[string]any{"url": "http://a.io"},
			map[string]any{"href": "http://b.io"},
			map[string]any{"unrelated": true},
		}})
		assert.Equal(t, models.Entities{URLs: []string{"http://a.io", "http://b.io"}}, c)
	})

	t.Run("Blocks", func(t *testing.T) {
		c := DecodeContent(map[string]any{"blocks": []any{
			map[string]any{"text": "one"},
			map[string]any{"content": "two"},
		}})
		assert.Equal(t, models.Blocks{Texts: []string{"one", "two"}}, c)
	})

	t.Run("UnrecognizedIsUnknown", func(t *testing.T) {
		raw := map[string]any{"weird": map[string]any{"deeply": "nested"}}
		assert.Equal(t, models.Unknown{Raw: raw}, DecodeContent(raw))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.Equal(t, models.Unknown{}, DecodeContent(nil))
	})
}
