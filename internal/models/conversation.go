package models

import "time"

// Confidence ranks how a conversation's display name was obtained. A
// resolution may only replace one of strictly lower rank, so a slow lookup
// finishing late can never clobber a better name that arrived first.
type Confidence int

const (
	ConfidenceNone      Confidence = iota // synthesized placeholder
	ConfidenceHeuristic                   // role-based guess
	ConfidenceRoleMatch                   // candidate/recruiter id matched current user
	ConfidenceExplicit                    // sender/receiver id matched current user
	ConfidenceProfile                     // fetched participant profile
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHeuristic:
		return "heuristic"
	case ConfidenceRoleMatch:
		return "role_match"
	case ConfidenceExplicit:
		return "explicit"
	case ConfidenceProfile:
		return "profile"
	default:
		return "none"
	}
}

// Conversation is one reconciled thread between the current user and another
// party. Non-local conversations are keyed by MatchID; at most one exists per
// match.
type Conversation struct {
	ID       string    `json:"id"`
	MatchID  string    `json:"match_id,omitempty"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar,omitempty"`
	Last     string    `json:"last"`
	LastTime time.Time `json:"last_time"`
	Messages []Message `json:"messages,omitempty"`

	OtherPartyID   string     `json:"-"`
	OtherPartyRole Role       `json:"-"`
	NameConfidence Confidence `json:"-"`
}

// Local reports whether the conversation exists only on this client, with no
// server-side match record backing it yet.
func (c *Conversation) Local() bool {
	return c.MatchID == ""
}
