// Package events carries open-chat requests from sibling views (the swipe
// dashboard, a match notification) to the chat session. It replaces the old
// shared global bus with one directional channel: the dashboard publishes,
// the session consumes, and nothing re-broadcasts.
package events

import (
	"github.com/swipeit/chatrelay/internal/metrics"
)

// OpenChat asks the session to surface a specific conversation, possibly one
// not in the list yet. Relayed marks events that were re-dispatched by a
// coordinating parent; the merger ignores those to keep old clients that
// still re-broadcast from ping-ponging.
type OpenChat struct {
	MatchID        string `json:"match_id"`
	Name           string `json:"name,omitempty"`
	InitialMessage string `json:"initial_message,omitempty"`
	Relayed        bool   `json:"relayed,omitempty"`
}

// Bus is a buffered, non-blocking open-chat channel.
type Bus struct {
	ch chan OpenChat
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan OpenChat, buffer)}
}

// Publish enqueues an event without blocking. Returns false if the buffer
// was full and the event was dropped.
func (b *Bus) Publish(ev OpenChat) bool {
	select {
	case b.ch <- ev:
		return true
	default:
		metrics.DroppedBusEvents.Inc()
		return false
	}
}

// Events is the consumer side of the bus.
func (b *Bus) Events() <-chan OpenChat {
	return b.ch
}
