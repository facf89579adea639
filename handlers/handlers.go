package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tinyroom/database"
	"tinyroom/hub"
	"tinyroom/ledger"
)

// Handler bundles the components the HTTP surface operates on
type Handler struct {
	DB       *database.DB
	Sessions *ledger.SessionStore
	Friends  *ledger.FriendLedger
	Messages *ledger.MessageLedger
	Hub      *hub.Hub
}

// New creates the handler set
func New(db *database.DB, sessions *ledger.SessionStore, friends *ledger.FriendLedger, messages *ledger.MessageLedger, h *hub.Hub) *Handler {
	return &Handler{
		DB:       db,
		Sessions: sessions,
		Friends:  friends,
		Messages: messages,
		Hub:      h,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeLedgerError maps ledger errors onto HTTP status codes
func writeLedgerError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Server error"

	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, ledger.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, ledger.ErrForbidden):
		status, message = http.StatusForbidden, "You can only delete your own messages"
	case errors.Is(err, ledger.ErrCeilingExceeded):
		status, message = http.StatusBadRequest, "Friend limit of 5 reached"
	case errors.Is(err, ledger.ErrDuplicate):
		status, message = http.StatusConflict, "Friend request already exists"
	case errors.Is(err, ledger.ErrSelfReference):
		status, message = http.StatusBadRequest, "You cannot add yourself as a friend"
	case errors.Is(err, ledger.ErrEmptyContent):
		status, message = http.StatusBadRequest, "Message content is required"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
