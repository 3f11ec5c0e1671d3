// Package identity determines which participant of a conversation is "the
// other party" relative to the current user, and picks the best available
// display name and avatar for them.
package identity

import (
	"github.com/swipeit/chatrelay/internal/models"
	"github.com/swipeit/chatrelay/internal/wire"
)

// Details carries freshly fetched participant profiles, when the caller has
// any. Either side may be nil.
type Details struct {
	Candidate *models.Participant
	Recruiter *models.Participant
}

// Resolution is the outcome of resolving one conversation record. A zero
// Resolution means nothing was resolvable; the caller keeps its placeholder.
type Resolution struct {
	Name         string
	Avatar       string
	OtherPartyID string
	OtherRole    models.Role
	Confidence   models.Confidence
}

// Resolve is a pure function of its inputs. Rules are tried in order and the
// first that matches wins; a missing or ambiguous field falls through
// silently to the next rule.
func Resolve(rec wire.ConversationRecord, self models.User, det Details) Resolution {
	res := otherParty(rec, self)
	if res.OtherPartyID == "" && res.Confidence == models.ConfidenceNone {
		return Resolution{}
	}

	applyNames(&res, rec, det)

	// Guard: resolving to the user's own name means a rule misfired
	// upstream. Flip the whole resolution to the opposite side if a name is
	// available there. The id flips too; a half-flipped result would send
	// later profile lookups to the wrong party and win at higher confidence.
	if res.Name != "" && res.Name == self.Name {
		role := res.OtherRole.Opposite()
		if flipped := nameForRole(rec, det, role); flipped != "" {
			res.Name = flipped
			res.OtherRole = role
			res.Avatar = avatarForRole(rec, det, role)
			res.OtherPartyID = idForRole(rec, role)
		}
	}

	return res
}

// otherParty applies the identifier rules: explicit sender/receiver first,
// then candidate/recruiter role ids, then the role heuristic.
func otherParty(rec wire.ConversationRecord, self models.User) Resolution {
	if rec.SenderID != "" && rec.ReceiverID != "" {
		switch self.ID {
		case rec.SenderID:
			return Resolution{OtherPartyID: rec.ReceiverID, OtherRole: roleOf(rec, rec.ReceiverID, self), Confidence: models.ConfidenceExplicit}
		case rec.ReceiverID:
			return Resolution{OtherPartyID: rec.SenderID, OtherRole: roleOf(rec, rec.SenderID, self), Confidence: models.ConfidenceExplicit}
		}
	}

	if rec.CandidateID != "" || rec.RecruiterID != "" {
		switch self.ID {
		case rec.CandidateID:
			return Resolution{OtherPartyID: rec.RecruiterID, OtherRole: models.RoleRecruiter, Confidence: models.ConfidenceRoleMatch}
		case rec.RecruiterID:
			return Resolution{OtherPartyID: rec.CandidateID, OtherRole: models.RoleCandidate, Confidence: models.ConfidenceRoleMatch}
		}
	}

	// Heuristic: a recruiter-looking user is talking to the candidate,
	// anyone else is talking to the recruiter.
	if self.IsRecruiter() && rec.CandidateID != "" {
		return Resolution{OtherPartyID: rec.CandidateID, OtherRole: models.RoleCandidate, Confidence: models.ConfidenceHeuristic}
	}
	if !self.IsRecruiter() && rec.RecruiterID != "" {
		return Resolution{OtherPartyID: rec.RecruiterID, OtherRole: models.RoleRecruiter, Confidence: models.ConfidenceHeuristic}
	}

	return Resolution{}
}

// roleOf infers the role of an id from the record's candidate/recruiter
// fields, defaulting to the opposite of the current user's side.
func roleOf(rec wire.ConversationRecord, id string, self models.User) models.Role {
	switch id {
	case rec.CandidateID:
		return models.RoleCandidate
	case rec.RecruiterID:
		return models.RoleRecruiter
	}
	if self.IsRecruiter() {
		return models.RoleCandidate
	}
	return models.RoleRecruiter
}

// applyNames fills in the best name/avatar for the resolved party. A fetched
// profile outranks anything carried on the record itself.
func applyNames(res *Resolution, rec wire.ConversationRecord, det Details) {
	if p := profileForRole(det, res.OtherRole); p != nil && p.Name != "" {
		res.Name = p.Name
		res.Avatar = p.Avatar
		res.Confidence = models.ConfidenceProfile
		return
	}

	res.Name = nameForRole(rec, det, res.OtherRole)
	res.Avatar = avatarForRole(rec, det, res.OtherRole)
}

// idForRole reads the record's id for a side, empty when the record does not
// carry one. Empty lets the match-details path re-derive it.
func idForRole(rec wire.ConversationRecord, role models.Role) string {
	if role == models.RoleCandidate {
		return rec.CandidateID
	}
	return rec.RecruiterID
}

func profileForRole(det Details, role models.Role) *models.Participant {
	if role == models.RoleCandidate {
		return det.Candidate
	}
	return det.Recruiter
}

func nameForRole(rec wire.ConversationRecord, det Details, role models.Role) string {
	if p := profileForRole(det, role); p != nil && p.Name != "" {
		return p.Name
	}
	if role == models.RoleCandidate && rec.CandidateName != "" {
		return rec.CandidateName
	}
	if role == models.RoleRecruiter && rec.RecruiterName != "" {
		return rec.RecruiterName
	}
	return rec.Name
}

func avatarForRole(rec wire.ConversationRecord, det Details, role models.Role) string {
	if p := profileForRole(det, role); p != nil && p.Avatar != "" {
		return p.Avatar
	}
	if role == models.RoleCandidate && rec.CandidateAvatar != "" {
		return rec.CandidateAvatar
	}
	if role == models.RoleRecruiter && rec.RecruiterAvatar != "" {
		return rec.RecruiterAvatar
	}
	return rec.Avatar
}
