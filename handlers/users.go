package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"tinyroom/middleware"
	"tinyroom/models"
)

// UpdateProfile overwrites the current user's profile fields
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var profile models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	profile.Username = strings.TrimSpace(profile.Username)
	if len(profile.Username) < 3 || len(profile.Username) > 20 {
		http.Error(w, `{"error": "Username must be 3-20 characters"}`, http.StatusBadRequest)
		return
	}

	if other, err := h.DB.GetUserByUsername(profile.Username); err == nil && other.ID != user.ID {
		http.Error(w, `{"error": "Username already taken"}`, http.StatusConflict)
		return
	}

	if err := h.DB.UpdateProfile(user.ID, profile); err != nil {
		http.Error(w, `{"error": "Failed to update profile"}`, http.StatusInternalServerError)
		return
	}

	updated, err := h.DB.GetUserByID(user.ID)
	if err != nil {
		http.Error(w, `{"error": "Server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"user": updated.ToResponse()})
}

// SearchUsers searches users by username or name
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, map[string]interface{}{"users": []models.UserResponse{}})
		return
	}

	users, err := h.DB.SearchUsers(query, user.ID, 10)
	if err != nil {
		http.Error(w, `{"error": "Search failed"}`, http.StatusInternalServerError)
		return
	}

	if users == nil {
		users = []models.UserResponse{}
	}
	writeJSON(w, map[string]interface{}{"users": users})
}
