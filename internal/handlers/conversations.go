package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swipeit/chatrelay/internal/models"
)

// ConversationResponse represents one conversation in API responses. The
// message list is omitted here; it lives on the messages endpoint.
type ConversationResponse struct {
	ID       string `json:"id"`
	MatchID  string `json:"match_id,omitempty"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Last     string `json:"last"`
	LastTime string `json:"last_time,omitempty"`
	Local    bool   `json:"local,omitempty"`
}

// ConversationListResponse represents the conversation list response.
type ConversationListResponse struct {
	State         string                 `json:"state"`
	Active        string                 `json:"active,omitempty"`
	Conversations []ConversationResponse `json:"conversations"`
}

// ListConversations handles the reconciled conversation list. Order is the
// merger's display order, not a timestamp sort.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	merger := h.session.Merger()

	convs := merger.Snapshot()
	out := make([]ConversationResponse, len(convs))
	for i, c := range convs {
		out[i] = toConversationResponse(c)
	}

	resp := ConversationListResponse{
		State:         merger.State().String(),
		Conversations: out,
	}
	if active, ok := merger.Active(); ok {
		resp.Active = active.ID
	}

	h.JSON(w, http.StatusOK, resp)
}

// ActivateConversation selects the conversation for a match and points the
// message feed at it.
func (h *Handler) ActivateConversation(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	if !h.session.Activate(matchID) {
		h.Error(w, http.StatusNotFound, "conversation not found")
		return
	}

	conv, _ := h.session.Merger().ByMatch(matchID)
	h.JSON(w, http.StatusOK, toConversationResponse(conv))
}

func toConversationResponse(c models.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:      c.ID,
		MatchID: c.MatchID,
		Name:    c.Name,
		Avatar:  c.Avatar,
		Last:    c.Last,
		Local:   c.Local(),
	}
	if !c.LastTime.IsZero() {
		resp.LastTime = c.LastTime.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}
