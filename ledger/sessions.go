package ledger

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"tinyroom/database"
	"tinyroom/models"
)

// SessionStore maps opaque session tokens to users. Expiry is checked
// lazily on resolve; there is no background sweep.
type SessionStore struct {
	db *database.DB
}

// NewSessionStore creates a session store over the durable store
func NewSessionStore(db *database.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create issues a fresh token for a user, valid for the session TTL
func (s *SessionStore) Create(userID string) (string, error) {
	token := uuid.NewString()
	now := time.Now().UTC()
	if err := s.db.CreateSession(token, userID, now, now.Add(models.SessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user behind a token. An expired token is deleted
// opportunistically and treated the same as an unknown one.
func (s *SessionStore) Resolve(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	session, err := s.db.GetSession(token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		s.db.DeleteSession(token)
		return nil, ErrUnauthorized
	}

	user, err := s.db.GetUserByID(session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Destroy removes a session, logging the user out of that token
func (s *SessionStore) Destroy(token string) error {
	return s.db.DeleteSession(token)
}
