package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swipeit/chatrelay/internal/normalize"
)

// MessageResponse represents one message in API responses, with the display
// text pre-split into text/link segments.
type MessageResponse struct {
	ID       string              `json:"id"`
	SenderID string              `json:"sender_id"`
	FromMe   bool                `json:"from_me"`
	Text     string              `json:"text"`
	Segments []normalize.Segment `json:"segments,omitempty"`
	Time     string              `json:"time,omitempty"`
}

// MessageListResponse represents the message list response.
type MessageListResponse struct {
	MatchID  string            `json:"match_id"`
	Messages []MessageResponse `json:"messages"`
}

// GetMessages handles fetching the merged messages of a conversation.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	conv, ok := h.session.Merger().ByMatch(matchID)
	if !ok {
		h.Error(w, http.StatusNotFound, "conversation not found")
		return
	}

	messages := make([]MessageResponse, len(conv.Messages))
	for i, m := range conv.Messages {
		messages[i] = MessageResponse{
			ID:       m.ID,
			SenderID: m.SenderID,
			FromMe:   m.FromMe,
			Text:     m.DisplayText,
			Segments: normalize.Linkify(m.DisplayText),
		}
		if !m.CreatedAt.IsZero() {
			messages[i].Time = m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
	}

	h.JSON(w, http.StatusOK, MessageListResponse{MatchID: matchID, Messages: messages})
}

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageFailure is the error body for a failed send. The original text
// rides along so the caller can restore it into the input field.
type SendMessageFailure struct {
	Error string `json:"error"`
	Text  string `json:"text"`
}

// SendMessage handles sending an outgoing message.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := sanitizeText(req.Text)
	if text == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(text) > 8192 {
		h.Error(w, http.StatusUnprocessableEntity, "text too long (max 8192 bytes)")
		return
	}

	if err := h.session.SendMessage(r.Context(), matchID, text); err != nil {
		h.JSON(w, http.StatusBadGateway, SendMessageFailure{
			Error: "send failed",
			Text:  req.Text,
		})
		return
	}

	h.JSON(w, http.StatusCreated, map[string]string{"status": "sent"})
}
