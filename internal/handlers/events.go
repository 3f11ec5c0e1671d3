package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/swipeit/chatrelay/internal/events"
)

// OpenChat handles an open-chat request from a sibling view (the swipe
// dashboard, a match notification). The event is queued for the session
// loop; relayed duplicates are filtered there.
func (h *Handler) OpenChat(w http.ResponseWriter, r *http.Request) {
	var ev events.OpenChat
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if ev.MatchID == "" {
		h.Error(w, http.StatusBadRequest, "match_id is required")
		return
	}

	if !h.bus.Publish(ev) {
		h.Error(w, http.StatusServiceUnavailable, "event queue full")
		return
	}

	h.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
