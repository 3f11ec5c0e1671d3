package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swipeit/chatrelay/internal/models"
)

// ParticipantResponse represents a participant profile response.
type ParticipantResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

// GetParticipant handles participant profile lookup, consulting the cache
// before the backend. The role query parameter picks which backend endpoint
// to ask on a miss.
func (h *Handler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := h.profiles.Get(r.Context(), id)
	if !ok {
		var err error
		if models.Role(r.URL.Query().Get("role")) == models.RoleRecruiter {
			p, err = h.client.RecruiterData(r.Context(), id)
		} else {
			p, err = h.client.CandidateData(r.Context(), id)
		}
		if err != nil {
			h.Error(w, http.StatusNotFound, "participant not found")
			return
		}
		h.profiles.Put(r.Context(), p)
	}

	h.JSON(w, http.StatusOK, ParticipantResponse{
		ID:     p.ID,
		Name:   p.Name,
		Avatar: p.Avatar,
		Role:   string(p.Role),
	})
}
