package ledger

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"tinyroom/database"
	"tinyroom/hub"
	"tinyroom/models"
)

// FriendLedger serializes friend-request lifecycle transitions and enforces
// the friend ceiling. All mutations run under one mutex so the ceiling and
// duplicate checks are atomic with the insert.
type FriendLedger struct {
	mutex sync.Mutex
	db    *database.DB
	hub   *hub.Hub
}

// NewFriendLedger creates a friendship ledger that notifies through the hub
func NewFriendLedger(db *database.DB, h *hub.Hub) *FriendLedger {
	return &FriendLedger{db: db, hub: h}
}

// Request creates a pending friendship from one user to another and notifies
// the recipient if connected
func (l *FriendLedger) Request(from *models.User, toUserID string) (*models.Friendship, error) {
	if from.ID == toUserID {
		return nil, ErrSelfReference
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, err := l.db.GetUserByID(toUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	for _, id := range []string{from.ID, toUserID} {
		count, err := l.db.FriendCount(id)
		if err != nil {
			return nil, err
		}
		if count >= models.MaxFriends {
			return nil, ErrCeilingExceeded
		}
	}

	if _, err := l.db.GetFriendship(from.ID, toUserID); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	request := &models.Friendship{
		RequestID: uuid.NewString(),
		UserID:    from.ID,
		FriendID:  toUserID,
		Status:    models.FriendStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.db.CreateFriendship(request); err != nil {
		return nil, err
	}

	profile := from.ToResponse()
	l.hub.SendToUser(toUserID, models.Event{
		Type:      models.EventFriendRequest,
		From:      &profile,
		RequestID: request.RequestID,
	})

	return request, nil
}

// Respond accepts or rejects a pending request addressed to the responding
// user. Accepting re-checks the ceiling for both parties; on a ceiling hit
// the request stays pending.
func (l *FriendLedger) Respond(requestID string, responder *models.User, accept bool) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	request, err := l.db.GetPendingRequest(requestID, responder.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if !accept {
		if err := l.db.DeleteFriendship(requestID); err != nil {
			return err
		}
		profile := responder.ToResponse()
		l.hub.SendToUser(request.UserID, models.Event{
			Type: models.EventFriendRejected,
			From: &profile,
		})
		return nil
	}

	// Counts may have changed since the request was created
	for _, id := range []string{request.UserID, request.FriendID} {
		count, err := l.db.FriendCount(id)
		if err != nil {
			return err
		}
		if count >= models.MaxFriends {
			return ErrCeilingExceeded
		}
	}

	if err := l.db.AcceptFriendship(requestID, request.UserID, request.FriendID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	profile := responder.ToResponse()
	l.hub.SendToUser(request.UserID, models.Event{
		Type: models.EventFriendAccepted,
		From: &profile,
	})
	return nil
}

// Remove deletes an accepted friendship between two users and decrements
// both counters. No event is pushed; the caller decides whether to notify.
func (l *FriendLedger) Remove(userID, friendID string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	friendship, err := l.db.GetFriendship(userID, friendID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if friendship.Status != models.FriendStatusAccepted {
		return ErrNotFound
	}

	err = l.db.RemoveFriendship(friendship.RequestID, friendship.UserID, friendship.FriendID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// List returns a user's accepted friends and pending incoming requests.
// Online status is attached from the hub.
func (l *FriendLedger) List(userID string) (*models.FriendList, error) {
	friends, err := l.db.GetFriends(userID)
	if err != nil {
		return nil, err
	}
	for i := range friends {
		friends[i].Online = l.hub.IsOnline(friends[i].ID)
	}

	pending, err := l.db.GetPendingFriendRequests(userID)
	if err != nil {
		return nil, err
	}

	if friends == nil {
		friends = []models.UserResponse{}
	}
	if pending == nil {
		pending = []models.FriendRequest{}
	}
	return &models.FriendList{Friends: friends, PendingRequests: pending}, nil
}
