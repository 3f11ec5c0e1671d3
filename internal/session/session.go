// Package session runs the reconciliation loop. One goroutine owns all
// merger mutation, the way the original UI's event loop did: the initial
// fetch, open-chat events, feed snapshots, and identity lookup results are
// all applied from here, in arrival order. Lookups themselves run
// concurrently and report back over a channel, so a slow one finishing late
// is handled by the merger's confidence gate, not by ordering assumptions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/swipeit/chatrelay/internal/backend"
	"github.com/swipeit/chatrelay/internal/cache"
	"github.com/swipeit/chatrelay/internal/events"
	"github.com/swipeit/chatrelay/internal/identity"
	"github.com/swipeit/chatrelay/internal/merge"
	"github.com/swipeit/chatrelay/internal/models"
	"github.com/swipeit/chatrelay/internal/wire"
)

type resolutionUpdate struct {
	convID string
	res    identity.Resolution
}

type feedUpdate struct {
	matchID string
	msgs    []wire.MessageRecord
}

// Session drives one user's conversation state.
type Session struct {
	self     models.User
	client   *backend.Client
	merger   *merge.Merger
	bus      *events.Bus
	profiles cache.ProfileCache
	interval time.Duration
	log      zerolog.Logger

	resolutions chan resolutionUpdate
	feedUpdates chan feedUpdate

	mu         sync.Mutex
	runCtx     context.Context
	feedCancel context.CancelFunc
}

// New creates a session for the given user.
func New(self models.User, client *backend.Client, bus *events.Bus, profiles cache.ProfileCache, interval time.Duration, log zerolog.Logger) *Session {
	return &Session{
		self:        self,
		client:      client,
		merger:      merge.NewMerger(self, log),
		bus:         bus,
		profiles:    profiles,
		interval:    interval,
		log:         log.With().Str("component", "session").Logger(),
		resolutions: make(chan resolutionUpdate, 16),
		feedUpdates: make(chan feedUpdate, 1),
	}
}

// Merger exposes the reconciled state for read handlers.
func (s *Session) Merger() *merge.Merger {
	return s.merger
}

// Run loads the initial list and then consumes events until the context is
// cancelled. A failed initial fetch leaves the list empty; the rest of the
// loop still runs, so open-chat events keep working.
func (s *Session) Run(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	recs, err := s.client.Conversations(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("initial conversation fetch failed")
	} else {
		s.merger.ApplyInitial(recs)
		for _, conv := range s.merger.Snapshot() {
			s.enqueueLookup(ctx, conv)
		}
	}
	s.syncFeed()

	for {
		select {
		case <-ctx.Done():
			s.stopFeed()
			return

		case ev := <-s.bus.Events():
			s.merger.ApplyOpenChat(ev)
			if conv, ok := s.merger.Active(); ok {
				s.enqueueLookup(ctx, conv)
			}
			s.syncFeed()

		case up := <-s.feedUpdates:
			s.merger.ApplyFeed(up.matchID, up.msgs)

		case up := <-s.resolutions:
			s.merger.ApplyResolution(up.convID, up.res)
		}
	}
}

// Activate selects a conversation and points the feed at it. The new feed
// outlives the caller; its lifetime is the session's.
func (s *Session) Activate(matchID string) bool {
	if !s.merger.Activate(matchID) {
		return false
	}
	s.syncFeed()
	return true
}

// SendMessage persists an outgoing message and appends it optimistically on
// success. On failure the caller still holds the text and can restore it.
func (s *Session) SendMessage(ctx context.Context, matchID, text string) error {
	resp, err := s.client.SendMessage(ctx, matchID, text)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", matchID).Msg("send failed")
		return err
	}

	id := resp.ID
	if id == "" {
		id = ulid.Make().String()
	}
	s.merger.AppendLocal(matchID, models.Message{
		ID:          id,
		SenderID:    s.self.ID,
		CreatedAt:   time.Now(),
		FromMe:      true,
		DisplayText: text,
		Content:     models.PlainText{Text: text},
	})
	return nil
}

// syncFeed points the feed at the active conversation, restarting it if the
// active match changed. Feed contexts derive from the context Run was given,
// never from a request: a feed must keep polling after the request that
// selected its conversation has completed. Cancelling the old feed's context
// is the teardown; no result delivered after that is applied.
func (s *Session) syncFeed() {
	conv, ok := s.merger.Active()
	if !ok || conv.MatchID == "" {
		s.stopFeed()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.feedCancel != nil {
		s.feedCancel()
	}

	base := s.runCtx
	if base == nil {
		base = context.Background()
	}
	fctx, cancel := context.WithCancel(base)
	s.feedCancel = cancel

	feed := backend.NewFeed(s.client, conv.MatchID, s.interval, s.log)
	go feed.Run(fctx)
	go func(matchID string) {
		for msgs := range feed.Snapshots() {
			select {
			case <-fctx.Done():
				return
			case s.feedUpdates <- feedUpdate{matchID: matchID, msgs: msgs}:
			}
		}
	}(conv.MatchID)
}

func (s *Session) stopFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedCancel != nil {
		s.feedCancel()
		s.feedCancel = nil
	}
}

// enqueueLookup resolves a conversation's other party in the background when
// the name is not yet profile-grade. Errors are logged and dropped; the
// conversation keeps its current name.
func (s *Session) enqueueLookup(ctx context.Context, conv models.Conversation) {
	if conv.NameConfidence >= models.ConfidenceProfile {
		return
	}
	if conv.OtherPartyID == "" && conv.MatchID == "" {
		return
	}

	go func() {
		id, role := conv.OtherPartyID, conv.OtherPartyRole
		if id == "" {
			det, err := s.client.GetMatchDetails(ctx, conv.MatchID)
			if err != nil {
				s.log.Warn().Err(err).Str("match_id", conv.MatchID).Msg("match details lookup failed")
				return
			}
			switch s.self.ID {
			case det.CandidateID:
				id, role = det.RecruiterID, models.RoleRecruiter
			case det.RecruiterID:
				id, role = det.CandidateID, models.RoleCandidate
			default:
				if s.self.IsRecruiter() {
					id, role = det.CandidateID, models.RoleCandidate
				} else {
					id, role = det.RecruiterID, models.RoleRecruiter
				}
			}
			if id == "" {
				return
			}
		}

		p, err := s.lookupProfile(ctx, id, role)
		if err != nil {
			s.log.Warn().Err(err).Str("participant_id", id).Msg("profile lookup failed")
			return
		}

		update := resolutionUpdate{
			convID: conv.ID,
			res: identity.Resolution{
				Name:         p.Name,
				Avatar:       p.Avatar,
				OtherPartyID: id,
				OtherRole:    role,
				Confidence:   models.ConfidenceProfile,
			},
		}
		select {
		case <-ctx.Done():
		case s.resolutions <- update:
		}
	}()
}

// lookupProfile consults the cache before asking the backend.
func (s *Session) lookupProfile(ctx context.Context, id string, role models.Role) (*models.Participant, error) {
	if p, ok := s.profiles.Get(ctx, id); ok {
		return p, nil
	}

	var (
		p   *models.Participant
		err error
	)
	if role == models.RoleCandidate {
		p, err = s.client.CandidateData(ctx, id)
	} else {
		p, err = s.client.RecruiterData(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.profiles.Put(ctx, p)
	return p, nil
}
