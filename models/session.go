package models

import "time"

// SessionTTL is how long a session token stays valid.
const SessionTTL = 7 * 24 * time.Hour

// Session maps an opaque token to a user
type Session struct {
	Token     string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
