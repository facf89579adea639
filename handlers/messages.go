package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"tinyroom/middleware"
)

type sendMessageRequest struct {
	Content string `json:"content"`
	Type    string `json:"message_type"`
	ReplyTo string `json:"reply_to"`
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

// GetMessages returns the retained room history
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Messages.List()
	if err != nil {
		http.Error(w, `{"error": "Failed to get messages"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"messages": messages})
}

// SendMessage posts a message to the room
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	message, err := h.Messages.Send(user, req.Content, req.Type, req.ReplyTo)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"message": message})
}

// AddReaction upserts the current user's reaction on a message
func (h *Handler) AddReaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	messageID := mux.Vars(r)["id"]
	if err := h.Messages.React(messageID, user.ID, req.Emoji); err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "Reaction added"})
}

// DeleteMessage removes one of the current user's messages
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	messageID := mux.Vars(r)["id"]
	if err := h.Messages.Delete(messageID, user.ID); err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "Message deleted"})
}
