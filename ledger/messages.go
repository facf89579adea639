package ledger

import (
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tinyroom/database"
	"tinyroom/hub"
	"tinyroom/models"
)

// MessageLedger is the retention-capped log of room messages. One mutex
// serializes insert/evict against reactions and deletions so the cap holds
// under concurrent sends.
type MessageLedger struct {
	mutex sync.Mutex
	db    *database.DB
	hub   *hub.Hub
}

// NewMessageLedger creates a message ledger that broadcasts through the hub
func NewMessageLedger(db *database.DB, h *hub.Hub) *MessageLedger {
	return &MessageLedger{db: db, hub: h}
}

// Send appends a message to the room, evicting the oldest ones until the
// retention cap holds again, and broadcasts it to everyone connected
func (l *MessageLedger) Send(author *models.User, content, msgType, replyTo string) (*models.MessageWithUser, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if msgType == "" {
		msgType = "text"
	}

	message := &models.Message{
		ID:        uuid.NewString(),
		UserID:    author.ID,
		Content:   content,
		Type:      msgType,
		ReplyTo:   replyTo,
		Reactions: map[string]string{},
		CreatedAt: time.Now().UTC(),
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.db.InsertMessage(message); err != nil {
		return nil, err
	}

	// A correct log evicts at most one message here; the loop also repairs
	// an over-capacity log instead of asserting.
	for {
		count, err := l.db.CountMessages()
		if err != nil {
			return nil, err
		}
		if count <= models.MaxMessages {
			break
		}
		if err := l.db.DeleteOldestMessage(); err != nil {
			return nil, err
		}
	}

	stored := &models.MessageWithUser{
		Message: *message,
		User:    author.ToResponse(),
	}
	l.hub.Broadcast(models.Event{
		Type:    models.EventNewMessage,
		Message: stored,
	})

	return stored, nil
}

// React upserts the user's reaction on a message, one per user with
// last-write-wins overwrite, and broadcasts the full updated map
func (l *MessageLedger) React(messageID, userID, emoji string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	message, err := l.db.GetMessage(messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if message.Reactions == nil {
		message.Reactions = map[string]string{}
	}
	message.Reactions[userID] = emoji

	if err := l.db.UpdateReactions(messageID, message.Reactions); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	l.hub.Broadcast(models.Event{
		Type:      models.EventReactionUpdate,
		MessageID: messageID,
		Reactions: message.Reactions,
	})
	return nil
}

// Delete removes a message if the requester authored it and broadcasts the
// deletion
func (l *MessageLedger) Delete(messageID, requesterID string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	message, err := l.db.GetMessage(messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if message.UserID != requesterID {
		return ErrForbidden
	}

	if err := l.db.DeleteMessage(messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	l.hub.Broadcast(models.Event{
		Type:      models.EventMessageDeleted,
		MessageID: messageID,
	})
	return nil
}

// List returns the retained messages in creation order with author profiles
func (l *MessageLedger) List() ([]models.MessageWithUser, error) {
	messages, err := l.db.GetMessages(models.MaxMessages)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.MessageWithUser{}
	}
	return messages, nil
}
