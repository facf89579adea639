package models

// Event types pushed over live connections
const (
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
	EventFriendRejected = "friend_rejected"
	EventNewMessage     = "new_message"
	EventReactionUpdate = "reaction_update"
	EventMessageDeleted = "message_deleted"
)

// Event is the self-describing payload delivered over a live connection.
// Type identifies which of the optional fields are set.
type Event struct {
	Type      string            `json:"type"`
	From      *UserResponse     `json:"from,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Message   *MessageWithUser  `json:"message,omitempty"`
	MessageID string            `json:"message_id,omitempty"`
	Reactions map[string]string `json:"reactions,omitempty"`
}
