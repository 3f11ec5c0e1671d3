package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	"github.com/swipeit/chatrelay/internal/backend"
	"github.com/swipeit/chatrelay/internal/cache"
	"github.com/swipeit/chatrelay/internal/events"
	"github.com/swipeit/chatrelay/internal/session"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	session  *session.Session
	client   *backend.Client
	bus      *events.Bus
	profiles cache.ProfileCache
	redis    *cache.RedisCache // nil when the cache is in-memory only
}

// NewHandler creates a new Handler with the given collaborators.
func NewHandler(s *session.Session, client *backend.Client, bus *events.Bus, profiles cache.ProfileCache, redis *cache.RedisCache) *Handler {
	return &Handler{session: s, client: client, bus: bus, profiles: profiles, redis: redis}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeText trims and strips control characters from user-entered text,
// keeping newlines and tabs.
func sanitizeText(text string) string {
	text = strings.TrimSpace(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
}
