package models

import "time"

// MaxMessages is the retention cap on the room history.
const MaxMessages = 10

// Message represents a message in the shared room
type Message struct {
	ID        string            `json:"message_id"`
	UserID    string            `json:"user_id"`
	Content   string            `json:"content"`
	Type      string            `json:"message_type"` // "text", "image"
	ReplyTo   string            `json:"reply_to,omitempty"`
	Reactions map[string]string `json:"reactions"` // user id -> emoji
	Pinned    bool              `json:"pinned"`
	CreatedAt time.Time         `json:"created_at"`
}

// MessageWithUser includes the author's profile for display
type MessageWithUser struct {
	Message
	User UserResponse `json:"user"`
}
