// Package backend wraps the hosted platform's RPC surface. All matching,
// scoring, persistence, and notification delivery live server-side; this
// client only fetches what the relay renders and posts what the user sends.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/swipeit/chatrelay/internal/metrics"
	"github.com/swipeit/chatrelay/internal/models"
	"github.com/swipeit/chatrelay/internal/wire"
)

// Client is a SwipeIT backend API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a client for the given backend URL, authenticating with
// the given bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest performs an HTTP request against the backend.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	metrics.BackendLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("backend error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// Conversations fetches the initial conversation list. Records come back in
// whatever shape the backend currently emits; decoding is the caller's
// problem, via the wire package.
func (c *Client) Conversations(ctx context.Context) ([]wire.ConversationRecord, error) {
	respBody, err := c.doRequest(ctx, "GET", "/v1/conversations", nil)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Conversations []map[string]any `json:"conversations"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, err
	}

	recs := make([]wire.ConversationRecord, len(raw.Conversations))
	for i, m := range raw.Conversations {
		recs[i] = wire.DecodeConversation(m)
	}
	return recs, nil
}

// Messages fetches the ordered message history for a match.
func (c *Client) Messages(ctx context.Context, matchID string) ([]wire.MessageRecord, error) {
	respBody, err := c.doRequest(ctx, "GET", "/v1/matches/"+matchID+"/messages", nil)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Messages []map[string]any `json:"messages"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, err
	}

	recs := make([]wire.MessageRecord, len(raw.Messages))
	for i, m := range raw.Messages {
		recs[i] = wire.DecodeMessage(m)
	}
	return recs, nil
}

// CandidateData fetches a candidate's profile details.
func (c *Client) CandidateData(ctx context.Context, id string) (*models.Participant, error) {
	return c.participant(ctx, "/v1/candidates/"+id, models.RoleCandidate)
}

// RecruiterData fetches a recruiter's profile details.
func (c *Client) RecruiterData(ctx context.Context, id string) (*models.Participant, error) {
	return c.participant(ctx, "/v1/recruiters/"+id, models.RoleRecruiter)
}

func (c *Client) participant(ctx context.Context, path string, role models.Role) (*models.Participant, error) {
	respBody, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var p models.Participant
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, err
	}
	if p.Role == "" {
		p.Role = role
	}
	return &p, nil
}

// MatchDetails holds the canonical participant ids for a match.
type MatchDetails struct {
	MatchID     string `json:"match_id"`
	CandidateID string `json:"candidate_id"`
	RecruiterID string `json:"recruiter_id"`
}

// GetMatchDetails fetches the canonical participant ids for a match.
func (c *Client) GetMatchDetails(ctx context.Context, matchID string) (*MatchDetails, error) {
	respBody, err := c.doRequest(ctx, "GET", "/v1/matches/"+matchID, nil)
	if err != nil {
		return nil, err
	}

	var det MatchDetails
	if err := json.Unmarshal(respBody, &det); err != nil {
		return nil, err
	}
	return &det, nil
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse is the response from sending a message.
type SendMessageResponse struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// SendMessage persists an outgoing message for a match.
func (c *Client) SendMessage(ctx context.Context, matchID, text string) (*SendMessageResponse, error) {
	reqBody, _ := json.Marshal(SendMessageRequest{Text: text})

	respBody, err := c.doRequest(ctx, "POST", "/v1/matches/"+matchID+"/messages", reqBody)
	if err != nil {
		metrics.SendFailures.Inc()
		return nil, err
	}

	var resp SendMessageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/v1/health", nil)
	return err
}
