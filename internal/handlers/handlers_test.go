package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swipeit/chatrelay/internal/api"
	"github.com/swipeit/chatrelay/internal/backend"
	"github.com/swipeit/chatrelay/internal/cache"
	"github.com/swipeit/chatrelay/internal/events"
	"github.com/swipeit/chatrelay/internal/handlers"
	"github.com/swipeit/chatrelay/internal/models"
	"github.com/swipeit/chatrelay/internal/session"
)

// startRelay wires a full relay against a stub backend and returns its
// HTTP server.
func startRelay(t *testing.T, backendHandler http.Handler) *httptest.Server {
	t.Helper()

	backendSrv := httptest.NewServer(backendHandler)
	t.Cleanup(backendSrv.Close)

	self := models.User{ID: "R1", Name: "Dana", Role: models.RoleRecruiter}
	client := backend.NewClient(backendSrv.URL, "")
	bus := events.NewBus(8)
	profiles := cache.NewMemoryCache()
	sess := session.New(self, client, bus, profiles, 20*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sess.Run(ctx)

	router := api.NewRouter(zerolog.Nop(), handlers.NewHandler(sess, client, bus, profiles, nil))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func stubBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"conversations": []map[string]any{
				{"match_id": "m1", "candidate_id": "C1", "recruiter_id": "R1", "candidate_name": "Sam"},
			},
		})
	})
	mux.HandleFunc("GET /v1/matches/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"id": "1", "sender_id": "C1", "html": `<a href="http://x.co/cv">cv</a>`},
			},
		})
	})
	mux.HandleFunc("GET /v1/candidates/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": r.PathValue("id"), "name": "Sam Park"})
	})
	mux.HandleFunc("GET /v1/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"match_id": r.PathValue("id"), "candidate_id": "C1", "recruiter_id": "R1"})
	})
	mux.HandleFunc("POST /v1/matches/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "backend down"})
	})
	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	return mux
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestListConversations(t *testing.T) {
	srv := startRelay(t, stubBackend(t))

	var resp handlers.ConversationListResponse
	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations", &resp)
		return resp.State != "empty" && len(resp.Conversations) == 1
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, "m1", resp.Conversations[0].MatchID)
	assert.Equal(t, "m1", resp.Active)
}

func TestGetMessagesLinkified(t *testing.T) {
	srv := startRelay(t, stubBackend(t))

	var resp handlers.MessageListResponse
	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations/m1/messages", &resp)
		return len(resp.Messages) == 1
	}, 2*time.Second, 20*time.Millisecond)

	msg := resp.Messages[0]
	assert.Equal(t, "http://x.co/cv", msg.Text)
	require.Len(t, msg.Segments, 1)
	assert.True(t, msg.Segments[0].Link)
}

func TestSendFailureRestoresText(t *testing.T) {
	srv := startRelay(t, stubBackend(t))

	var list handlers.ConversationListResponse
	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations", &list)
		return len(list.Conversations) == 1
	}, 2*time.Second, 20*time.Millisecond)

	body, _ := json.Marshal(handlers.SendMessageRequest{Text: "my typed message"})
	resp, err := http.Post(srv.URL+"/conversations/m1/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var failure handlers.SendMessageFailure
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
	assert.Equal(t, "my typed message", failure.Text)
}

func TestOpenChatEndpoint(t *testing.T) {
	srv := startRelay(t, stubBackend(t))

	var list handlers.ConversationListResponse
	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations", &list)
		return len(list.Conversations) == 1
	}, 2*time.Second, 20*time.Millisecond)

	body, _ := json.Marshal(events.OpenChat{MatchID: "m5", Name: "Robin"})
	resp, err := http.Post(srv.URL+"/events/open-chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations", &list)
		return len(list.Conversations) == 2 && list.Conversations[0].MatchID == "m5"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFeedOutlivesActivationRequest(t *testing.T) {
	// Activation arrives over HTTP, and net/http cancels the request
	// context the moment the response is written. The feed started for the
	// newly active conversation must keep polling past that point.
	var mu sync.Mutex
	messages := map[string][]map[string]any{
		"m1": {{"id": "1", "sender_id": "C1", "content": "hello"}},
		"m2": {{"id": "2", "sender_id": "C2", "content": "hey there"}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"conversations": []map[string]any{
				{"match_id": "m1", "candidate_id": "C1", "recruiter_id": "R1", "candidate_name": "Sam"},
				{"match_id": "m2", "candidate_id": "C2", "recruiter_id": "R1", "candidate_name": "Alex"},
			},
		})
	})
	mux.HandleFunc("GET /v1/matches/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		msgs := append([]map[string]any(nil), messages[r.PathValue("id")]...)
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"messages": msgs})
	})
	mux.HandleFunc("GET /v1/candidates/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": r.PathValue("id"), "name": "Sam Park"})
	})

	srv := startRelay(t, mux)

	var list handlers.ConversationListResponse
	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations", &list)
		return len(list.Conversations) == 2
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Post(srv.URL+"/conversations/m2/activate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A message lands after the activation request has completed. Only a
	// still-running feed can surface it.
	mu.Lock()
	messages["m2"] = append(messages["m2"], map[string]any{
		"id": "3", "sender_id": "C2", "content": "still there?",
	})
	mu.Unlock()

	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations", &list)
		for _, c := range list.Conversations {
			if c.MatchID == "m2" {
				return c.Last == "still there?"
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRelayedOpenChatLeavesStateAlone(t *testing.T) {
	srv := startRelay(t, stubBackend(t))

	// Wait for the state to settle (profile resolved, feed landed) so the
	// comparison below isn't racing legitimate updates.
	var before handlers.ConversationListResponse
	require.Eventually(t, func() bool {
		getJSON(t, srv.URL+"/conversations", &before)
		return len(before.Conversations) == 1 &&
			before.Conversations[0].Name == "Sam Park" &&
			before.Conversations[0].Last != ""
	}, 2*time.Second, 20*time.Millisecond)

	body, _ := json.Marshal(events.OpenChat{MatchID: "m5", Relayed: true})
	resp, err := http.Post(srv.URL+"/events/open-chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	time.Sleep(100 * time.Millisecond)
	var after handlers.ConversationListResponse
	getJSON(t, srv.URL+"/conversations", &after)
	assert.Equal(t, before.Conversations, after.Conversations)
}

func TestHealth(t *testing.T) {
	srv := startRelay(t, stubBackend(t))

	var health handlers.HealthResponse
	resp := getJSON(t, srv.URL+"/healthz", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "pass", health.Checks["backend"].Status)
}

func TestParticipantLookup(t *testing.T) {
	srv := startRelay(t, stubBackend(t))

	var p handlers.ParticipantResponse
	getJSON(t, srv.URL+"/participants/C1", &p)
	assert.Equal(t, "Sam Park", p.Name)
}
