package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"tinyroom/middleware"
)

type addFriendRequest struct {
	FriendID string `json:"friend_id"`
}

// AddFriend sends a friend request
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req addFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	request, err := h.Friends.Request(user, req.FriendID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"message":    "Friend request sent",
		"request_id": request.RequestID,
	})
}

// RespondFriendRequest accepts or rejects a pending friend request
func (h *Handler) RespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	requestID := mux.Vars(r)["id"]
	action := r.URL.Query().Get("action")
	if action != "accept" && action != "reject" {
		http.Error(w, `{"error": "Invalid action"}`, http.StatusBadRequest)
		return
	}

	if err := h.Friends.Respond(requestID, user, action == "accept"); err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "Friend request " + action + "ed"})
}

// GetFriends returns the current user's friends and pending requests
func (h *Handler) GetFriends(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	list, err := h.Friends.List(user.ID)
	if err != nil {
		http.Error(w, `{"error": "Failed to get friends"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, list)
}

// RemoveFriend removes an accepted friendship
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	friendID := mux.Vars(r)["id"]
	if err := h.Friends.Remove(user.ID, friendID); err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "Friend removed"})
}
