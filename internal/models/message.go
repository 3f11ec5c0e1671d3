package models

import "time"

// Message is one unit of communication within a conversation. ID is the
// server-assigned identifier, or a ULID for messages appended optimistically
// before the backend confirms them.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`

	// Derived at merge time; the raw payload is not re-probed after that.
	FromMe      bool    `json:"from_me"`
	DisplayText string  `json:"text"`
	Content     Content `json:"-"`
}
