package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swipeit/chatrelay/internal/models"
	"github.com/swipeit/chatrelay/internal/wire"
)

func TestResolve(t *testing.T) {
	recruiter := models.User{ID: "R1", Name: "Dana", Role: models.RoleRecruiter}
	candidate := models.User{ID: "C1", Name: "Sam", Role: models.RoleCandidate}

	t.Run("ExplicitSenderReceiver", func(t *testing.T) {
		rec := wire.ConversationRecord{
			CandidateID: "C1", RecruiterID: "R1",
			SenderID: "R1", ReceiverID: "C1",
			CandidateName: "Sam",
		}
		res := Resolve(rec, recruiter, Details{})
		assert.Equal(t, "C1", res.OtherPartyID)
		assert.Equal(t, models.RoleCandidate, res.OtherRole)
		assert.Equal(t, "Sam", res.Name)
		assert.Equal(t, models.ConfidenceExplicit, res.Confidence)
	})

	t.Run("ExplicitAsReceiver", func(t *testing.T) {
		rec := wire.ConversationRecord{SenderID: "R1", ReceiverID: "C1", RecruiterID: "R1", RecruiterName: "Acme"}
		res := Resolve(rec, candidate, Details{})
		assert.Equal(t, "R1", res.OtherPartyID)
		assert.Equal(t, models.RoleRecruiter, res.OtherRole)
		assert.Equal(t, "Acme", res.Name)
	})

	t.Run("RoleIDMatch", func(t *testing.T) {
		rec := wire.ConversationRecord{CandidateID: "C1", RecruiterID: "R1", RecruiterName: "Acme"}
		res := Resolve(rec, candidate, Details{})
		assert.Equal(t, "R1", res.OtherPartyID)
		assert.Equal(t, models.ConfidenceRoleMatch, res.Confidence)
		assert.Equal(t, "Acme", res.Name)
	})

	t.Run("RoleHeuristicForRecruiter", func(t *testing.T) {
		// Current user's id matches nothing; the company marker drives
		// the guess.
		user := models.User{ID: "X9", CompanyID: "org-1"}
		rec := wire.ConversationRecord{CandidateID: "C1", CandidateName: "Sam"}
		res := Resolve(rec, user, Details{})
		assert.Equal(t, "C1", res.OtherPartyID)
		assert.Equal(t, models.RoleCandidate, res.OtherRole)
		assert.Equal(t, models.ConfidenceHeuristic, res.Confidence)
	})

	t.Run("RoleHeuristicForCandidate", func(t *testing.T) {
		user := models.User{ID: "X9"}
		rec := wire.ConversationRecord{RecruiterID: "R1", RecruiterName: "Acme"}
		res := Resolve(rec, user, Details{})
		assert.Equal(t, "R1", res.OtherPartyID)
		assert.Equal(t, models.RoleRecruiter, res.OtherRole)
	})

	t.Run("OwnNameGuardFlips", func(t *testing.T) {
		// Resolution landed on the user's own name; flip to the other
		// side's name.
		rec := wire.ConversationRecord{
			CandidateID: "C1", RecruiterID: "R1",
			CandidateName: "Sam", RecruiterName: "Acme",
		}
		res := Resolve(rec, models.User{ID: "R1", Name: "Acme", Role: models.RoleRecruiter}, Details{})
		// Rule 2 picks the candidate, whose name is fine; force the bad
		// case the other way around.
		assert.Equal(t, "Sam", res.Name)

		badRec := wire.ConversationRecord{
			CandidateID: "C1", RecruiterID: "R1",
			CandidateName: "Sam", RecruiterName: "Acme",
		}
		badRes := Resolve(badRec, models.User{ID: "C1", Name: "Acme", Role: models.RoleCandidate}, Details{})
		assert.Equal(t, "Sam", badRes.Name)
	})

	t.Run("OwnNameGuardFlipsIDToo", func(t *testing.T) {
		// The flip has to carry the id along with the name and role.
		// Otherwise a follow-up profile lookup targets the misresolved
		// party and overwrites the corrected name at higher confidence.
		rec := wire.ConversationRecord{
			CandidateID: "C1", RecruiterID: "R1",
			CandidateName: "Sam", RecruiterName: "Acme",
		}
		res := Resolve(rec, models.User{ID: "C1", Name: "Acme", Role: models.RoleCandidate}, Details{})
		assert.Equal(t, "Sam", res.Name)
		assert.Equal(t, models.RoleCandidate, res.OtherRole)
		assert.Equal(t, "C1", res.OtherPartyID)
	})

	t.Run("OwnNameGuardClearsUnknownID", func(t *testing.T) {
		// No id carried for the flipped side: the resolution must not keep
		// the old party's id.
		rec := wire.ConversationRecord{
			RecruiterID:   "R1",
			CandidateName: "Sam", RecruiterName: "Acme",
		}
		res := Resolve(rec, models.User{ID: "X9", Name: "Acme"}, Details{})
		assert.Equal(t, "Sam", res.Name)
		assert.Equal(t, models.RoleCandidate, res.OtherRole)
		assert.Empty(t, res.OtherPartyID)
	})

	t.Run("ProfileOutranksRecordFields", func(t *testing.T) {
		rec := wire.ConversationRecord{CandidateID: "C1", RecruiterID: "R1", CandidateName: "stale name"}
		det := Details{Candidate: &models.Participant{ID: "C1", Name: "Sam Park", Avatar: "http://img/s.png"}}
		res := Resolve(rec, recruiter, det)
		assert.Equal(t, "Sam Park", res.Name)
		assert.Equal(t, "http://img/s.png", res.Avatar)
		assert.Equal(t, models.ConfidenceProfile, res.Confidence)
	})

	t.Run("NothingResolvable", func(t *testing.T) {
		res := Resolve(wire.ConversationRecord{}, recruiter, Details{})
		assert.Equal(t, Resolution{}, res)
	})

	t.Run("Idempotent", func(t *testing.T) {
		rec := wire.ConversationRecord{
			CandidateID: "C1", RecruiterID: "R1",
			SenderID: "R1", ReceiverID: "C1",
			CandidateName: "Sam",
		}
		first := Resolve(rec, recruiter, Details{})
		second := Resolve(rec, recruiter, Details{})
		assert.Equal(t, first, second)
	})
}
