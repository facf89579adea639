package models

import "time"

// MaxFriends is the ceiling on accepted friendships per user.
const MaxFriends = 5

// FriendStatus represents the status of a friend request
type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
)

// Friendship represents a friendship record between two users
type Friendship struct {
	RequestID string       `json:"request_id"`
	UserID    string       `json:"user_id"`   // requester
	FriendID  string       `json:"friend_id"` // recipient
	Status    FriendStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// FriendRequest is a pending incoming request with the requester's profile
type FriendRequest struct {
	RequestID string       `json:"request_id"`
	From      UserResponse `json:"from"`
	CreatedAt time.Time    `json:"created_at"`
}

// FriendList is the response shape for the friends listing
type FriendList struct {
	Friends         []UserResponse  `json:"friends"`
	PendingRequests []FriendRequest `json:"pending_requests"`
}
