// Package wire decodes the loosely shaped payloads the hosted backend
// returns into typed records. The backend has accumulated several key
// spellings for the same concept; all of that probing lives here, once, so
// the rest of the relay works on explicit types.
package wire

import (
	"strconv"
	"time"

	"github.com/swipeit/chatrelay/internal/models"
)

// Alternate key names per concept, in probe order.
var (
	matchKeys     = []string{"match_id", "matchId", "matchID", "match"}
	candidateKeys = []string{"candidate_id", "candidateId", "candidate"}
	recruiterKeys = []string{"recruiter_id", "recruiterId", "recruiter"}
	senderKeys    = []string{"sender_id", "senderId", "sender", "from_id", "from"}
	receiverKeys  = []string{"receiver_id", "receiverId", "receiver", "to_id", "to"}

	candidateNameKeys = []string{"candidate_name", "candidateName"}
	recruiterNameKeys = []string{"recruiter_name", "recruiterName", "company_name", "companyName"}
	nameKeys          = []string{"name", "display_name", "displayName", "title"}

	candidateAvatarKeys = []string{"candidate_avatar", "candidateAvatar", "candidate_photo"}
	recruiterAvatarKeys = []string{"recruiter_avatar", "recruiterAvatar", "company_logo", "companyLogo"}
	avatarKeys          = []string{"avatar", "avatar_url", "avatarUrl", "photo", "image"}

	messageIDKeys = []string{"id", "_id", "message_id", "messageId"}
	textKeys      = []string{"content", "text", "body", "message", "msg"}
	htmlKeys      = []string{"html", "html_body", "htmlBody", "rich_text"}
	timeKeys      = []string{"created_at", "createdAt", "time", "timestamp", "ts", "sent_at"}
	lastKeys      = []string{"last_message", "lastMessage", "last", "preview"}
)

// ConversationRecord is one conversation row as fetched, with every known
// alternate key collapsed. Absent fields are empty strings.
type ConversationRecord struct {
	MatchID     string
	CandidateID string
	RecruiterID string
	SenderID    string
	ReceiverID  string

	CandidateName string
	RecruiterName string
	Name          string

	CandidateAvatar string
	RecruiterAvatar string
	Avatar          string

	Last     models.Content
	LastTime time.Time
}

// MessageRecord is one message row as fetched.
type MessageRecord struct {
	ID        string
	SenderID  string
	CreatedAt time.Time
	Content   models.Content
}

// DecodeConversation decodes a raw conversation record. It never fails;
// anything unrecognized is simply absent from the result.
func DecodeConversation(m map[string]any) ConversationRecord {
	rec := ConversationRecord{
		MatchID:     firstString(m, matchKeys...),
		CandidateID: firstString(m, candidateKeys...),
		RecruiterID: firstString(m, recruiterKeys...),
		SenderID:    firstString(m, senderKeys...),
		ReceiverID:  firstString(m, receiverKeys...),

		CandidateName: firstString(m, candidateNameKeys...),
		RecruiterName: firstString(m, recruiterNameKeys...),
		Name:          firstString(m, nameKeys...),

		CandidateAvatar: firstString(m, candidateAvatarKeys...),
		RecruiterAvatar: firstString(m, recruiterAvatarKeys...),
		Avatar:          firstString(m, avatarKeys...),

		LastTime: firstTime(m, timeKeys...),
	}

	for _, k := range lastKeys {
		if v, ok := m[k]; ok {
			rec.Last = DecodeContent(v)
			break
		}
	}

	return rec
}

// DecodeMessage decodes a raw message record.
func DecodeMessage(m map[string]any) MessageRecord {
	return MessageRecord{
		ID:        firstString(m, messageIDKeys...),
		SenderID:  firstString(m, senderKeys...),
		CreatedAt: firstTime(m, timeKeys...),
		Content:   DecodeContent(m),
	}
}

// DecodeContent classifies a raw payload value into a content variant.
// Total: anything unrecognized lands in Unknown, never an error.
func DecodeContent(v any) models.Content {
	switch val := v.(type) {
	case nil:
		return models.Unknown{}
	case string:
		return models.PlainText{Text: val}
	case map[string]any:
		// HTML wins over a plain-text field in the same record: the UI's
		// primary concern is the links the HTML carries.
		if html := firstString(val, htmlKeys...); html != "" {
			return models.HTML{Body: html}
		}
		if text := firstString(val, textKeys...); text != "" {
			return models.PlainText{Text: text}
		}
		if ents, ok := val["entities"].([]any); ok {
			if urls := collectField(ents, "url", "href", "link"); len(urls) > 0 {
				return models.Entities{URLs: urls}
			}
		}
		if blocks, ok := val["blocks"].([]any); ok {
			if texts := collectField(blocks, "text", "content", "value"); len(texts) > 0 {
				return models.Blocks{Texts: texts}
			}
		}
		return models.Unknown{Raw: val}
	default:
		return models.Unknown{Raw: v}
	}
}

// collectField pulls the first matching string field out of each element of a
// raw list, skipping elements that carry none.
func collectField(items []any, keys ...string) []string {
	var out []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s := firstString(m, keys...); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// firstString returns the first non-empty string value among the given keys.
// Numeric ids are stringified; the backend is not consistent about them.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

// firstTime parses the first usable timestamp among the given keys. Accepts
// RFC 3339 strings and unix epochs in seconds or milliseconds.
func firstTime(m map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return t
			}
		case float64:
			return epochToTime(int64(v))
		case int64:
			return epochToTime(v)
		}
	}
	return time.Time{}
}

// epochToTime treats values past the year-2128 second boundary as
// milliseconds.
func epochToTime(n int64) time.Time {
	if n > 5e9 {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}
