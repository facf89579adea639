package ledger

import "errors"

// Caller errors surfaced by the ledgers. None of these are retried
// internally; retrying is caller policy.
var (
	ErrUnauthorized    = errors.New("no valid session")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrCeilingExceeded = errors.New("friend limit reached")
	ErrDuplicate       = errors.New("friend request already exists")
	ErrSelfReference   = errors.New("cannot friend yourself")
	ErrEmptyContent    = errors.New("message content is empty")
)
