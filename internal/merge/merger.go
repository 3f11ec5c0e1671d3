// Package merge maintains the authoritative conversation list. Three
// asynchronous sources feed it: the one-time initial fetch, the message feed
// for the active conversation, and open-chat events from sibling views. Every
// transition replaces the list wholesale under one lock, so readers never see
// a half-applied merge.
package merge

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swipeit/chatrelay/internal/events"
	"github.com/swipeit/chatrelay/internal/identity"
	"github.com/swipeit/chatrelay/internal/metrics"
	"github.com/swipeit/chatrelay/internal/models"
	"github.com/swipeit/chatrelay/internal/normalize"
	"github.com/swipeit/chatrelay/internal/wire"
)

// State of the merged list.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateUpdated
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateUpdated:
		return "updated"
	default:
		return "empty"
	}
}

// Merger holds the reconciled conversation list. The session loop is the
// only writer; HTTP handlers read snapshots concurrently.
type Merger struct {
	mu       sync.Mutex
	state    State
	list     []*models.Conversation
	activeID string

	self models.User
	log  zerolog.Logger
}

// NewMerger creates an empty merger for the given current user.
func NewMerger(self models.User, log zerolog.Logger) *Merger {
	return &Merger{self: self, log: log.With().Str("component", "merger").Logger()}
}

// ApplyInitial replaces the list with the fetched conversation records,
// deduplicated by match id (first occurrence wins). The first entry becomes
// active.
func (m *Merger) ApplyInitial(recs []wire.ConversationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(recs))
	list := make([]*models.Conversation, 0, len(recs))
	for _, rec := range recs {
		if rec.MatchID != "" && seen[rec.MatchID] {
			continue
		}
		if rec.MatchID != "" {
			seen[rec.MatchID] = true
		}
		list = append(list, m.fromRecord(rec))
	}

	m.list = list
	m.activeID = ""
	if len(list) > 0 {
		m.activeID = list[0].ID
	}
	m.state = StateLoaded

	metrics.MergeEvents.WithLabelValues("initial").Inc()
	m.log.Debug().Int("conversations", len(list)).Msg("initial list applied")
}

// ApplyOpenChat handles an external open-chat request. A known match moves to
// the front; an unknown one is synthesized and prepended, displacing any
// local-only drafts. Relayed events are ignored.
func (m *Merger) ApplyOpenChat(ev events.OpenChat) {
	if ev.Relayed {
		metrics.IgnoredEvents.WithLabelValues("relayed").Inc()
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.indexByMatch(ev.MatchID); idx >= 0 {
		conv := m.list[idx]
		m.list = append(m.list[:idx], m.list[idx+1:]...)
		m.list = append([]*models.Conversation{conv}, m.list...)
		m.activeID = conv.ID
		m.state = StateUpdated
		metrics.MergeEvents.WithLabelValues("open_chat").Inc()
		return
	}

	conv := &models.Conversation{
		ID:      ev.MatchID,
		MatchID: ev.MatchID,
		Name:    ev.Name,
		Last:    ev.InitialMessage,
	}
	if conv.ID == "" {
		// Events published directly to the bus may carry no match id; an
		// empty conversation id would be unaddressable by later lookups.
		conv.ID = "conv-" + uuid.NewString()
	}
	if conv.Name == "" {
		conv.Name = placeholderName(conv.ID)
	} else {
		conv.NameConfidence = models.ConfidenceExplicit
	}

	// Drop other local-only drafts so throwaway placeholders don't pile up.
	kept := make([]*models.Conversation, 0, len(m.list)+1)
	kept = append(kept, conv)
	for _, c := range m.list {
		if c.Local() {
			continue
		}
		kept = append(kept, c)
	}
	m.list = kept
	m.activeID = conv.ID
	m.state = StateUpdated

	metrics.MergeEvents.WithLabelValues("open_chat").Inc()
	m.log.Debug().Str("match_id", ev.MatchID).Msg("conversation synthesized from open-chat event")
}

// ApplyFeed merges a message snapshot for one match. Snapshots for anything
// but the active conversation are ignored; the feed is scoped to one
// conversation at a time.
func (m *Merger) ApplyFeed(matchID string, recs []wire.MessageRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.active()
	if conv == nil || conv.MatchID != matchID {
		metrics.IgnoredEvents.WithLabelValues("inactive_feed").Inc()
		return
	}

	msgs := make([]models.Message, len(recs))
	for i, rec := range recs {
		msgs[i] = models.Message{
			ID:          rec.ID,
			SenderID:    rec.SenderID,
			CreatedAt:   rec.CreatedAt,
			FromMe:      rec.SenderID != "" && rec.SenderID == m.self.ID,
			DisplayText: normalize.Text(rec.Content),
			Content:     rec.Content,
		}
	}
	conv.Messages = msgs

	if n := len(msgs); n > 0 {
		conv.Last = msgs[n-1].DisplayText
		conv.LastTime = msgs[n-1].CreatedAt
	}
	m.state = StateUpdated

	metrics.MergeEvents.WithLabelValues("feed").Inc()
}

// ApplyResolution updates a conversation's name and avatar. The update is
// confidence-gated: a late heuristic result cannot overwrite a name that a
// profile fetch already established.
func (m *Merger) ApplyResolution(convID string, res identity.Resolution) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.byID(convID)
	if conv == nil {
		return
	}
	if res.Name == "" || res.Confidence <= conv.NameConfidence {
		metrics.IgnoredEvents.WithLabelValues("stale_resolution").Inc()
		return
	}

	conv.Name = res.Name
	conv.NameConfidence = res.Confidence
	if res.Avatar != "" {
		conv.Avatar = res.Avatar
	}
	if conv.OtherPartyID == "" {
		conv.OtherPartyID = res.OtherPartyID
		conv.OtherPartyRole = res.OtherRole
	}
	m.state = StateUpdated

	metrics.MergeEvents.WithLabelValues("resolution").Inc()
	metrics.Resolutions.WithLabelValues(res.Confidence.String()).Inc()
}

// AppendLocal appends an optimistic outgoing message to the conversation for
// the given match, updating the preview fields.
func (m *Merger) AppendLocal(matchID string, msg models.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexByMatch(matchID)
	if idx < 0 {
		return
	}
	conv := m.list[idx]
	conv.Messages = append(conv.Messages, msg)
	conv.Last = msg.DisplayText
	conv.LastTime = msg.CreatedAt
	m.state = StateUpdated

	metrics.MergeEvents.WithLabelValues("local_send").Inc()
}

// Activate marks the conversation for the given match as active. Returns
// false if no such conversation exists.
func (m *Merger) Activate(matchID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexByMatch(matchID)
	if idx < 0 {
		return false
	}
	m.activeID = m.list[idx].ID
	return true
}

// Snapshot copies the current list in display order.
func (m *Merger) Snapshot() []models.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Conversation, len(m.list))
	for i, c := range m.list {
		out[i] = *c
		out[i].Messages = append([]models.Message(nil), c.Messages...)
	}
	return out
}

// Active returns a copy of the active conversation, if any.
func (m *Merger) Active() (models.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.active()
	if conv == nil {
		return models.Conversation{}, false
	}
	out := *conv
	out.Messages = append([]models.Message(nil), conv.Messages...)
	return out, true
}

// ByMatch returns a copy of the conversation for the given match, if any.
func (m *Merger) ByMatch(matchID string) (models.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexByMatch(matchID)
	if idx < 0 {
		return models.Conversation{}, false
	}
	out := *m.list[idx]
	out.Messages = append([]models.Message(nil), m.list[idx].Messages...)
	return out, true
}

// State returns the current list state.
func (m *Merger) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// fromRecord maps one fetched record into a conversation, resolving what it
// can from the record alone. Callers hold the lock.
func (m *Merger) fromRecord(rec wire.ConversationRecord) *models.Conversation {
	conv := &models.Conversation{MatchID: rec.MatchID}
	if rec.MatchID != "" {
		conv.ID = rec.MatchID
	} else {
		conv.ID = "conv-" + uuid.NewString()
	}

	res := identity.Resolve(rec, m.self, identity.Details{})
	if res.Name != "" {
		conv.Name = res.Name
		conv.Avatar = res.Avatar
		conv.NameConfidence = res.Confidence
		conv.OtherPartyID = res.OtherPartyID
		conv.OtherPartyRole = res.OtherRole
	} else {
		conv.Name = placeholderName(conv.ID)
		if res.OtherPartyID != "" {
			conv.OtherPartyID = res.OtherPartyID
			conv.OtherPartyRole = res.OtherRole
		}
	}

	if rec.Last != nil {
		conv.Last = normalize.Text(rec.Last)
	}
	conv.LastTime = rec.LastTime
	return conv
}

func (m *Merger) active() *models.Conversation {
	return m.byID(m.activeID)
}

func (m *Merger) byID(id string) *models.Conversation {
	if id == "" {
		return nil
	}
	for _, c := range m.list {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *Merger) indexByMatch(matchID string) int {
	if matchID == "" {
		return -1
	}
	for i, c := range m.list {
		if c.MatchID == matchID {
			return i
		}
	}
	return -1
}

// placeholderName is the synthesized display name used until a real one
// resolves.
func placeholderName(id string) string {
	return "conv-" + id
}
