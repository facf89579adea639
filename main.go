package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"tinyroom/database"
	"tinyroom/handlers"
	"tinyroom/hub"
	"tinyroom/ledger"
	"tinyroom/middleware"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "tinyroom.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	registry := hub.New()
	sessions := ledger.NewSessionStore(db)
	friends := ledger.NewFriendLedger(db, registry)
	messages := ledger.NewMessageLedger(db, registry)
	h := handlers.New(db, sessions, friends, messages, registry)

	r := mux.NewRouter()

	r.HandleFunc("/api/auth/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)

	auth := r.NewRoute().Subrouter()
	auth.Use(middleware.Auth(sessions))
	auth.HandleFunc("/api/auth/me", h.Me).Methods(http.MethodGet)
	auth.HandleFunc("/api/user/profile", h.UpdateProfile).Methods(http.MethodPut)
	auth.HandleFunc("/api/users/search", h.SearchUsers).Methods(http.MethodGet)
	auth.HandleFunc("/api/friends/request", h.AddFriend).Methods(http.MethodPost)
	auth.HandleFunc("/api/friends/request/{id}", h.RespondFriendRequest).Methods(http.MethodPut)
	auth.HandleFunc("/api/friends/{id}", h.RemoveFriend).Methods(http.MethodDelete)
	auth.HandleFunc("/api/friends", h.GetFriends).Methods(http.MethodGet)
	auth.HandleFunc("/api/messages", h.GetMessages).Methods(http.MethodGet)
	auth.HandleFunc("/api/messages", h.SendMessage).Methods(http.MethodPost)
	auth.HandleFunc("/api/messages/{id}/reaction", h.AddReaction).Methods(http.MethodPost)
	auth.HandleFunc("/api/messages/{id}", h.DeleteMessage).Methods(http.MethodDelete)
	auth.HandleFunc("/ws", h.HandleWebSocket)

	log.Printf("tinyroom server starting on http://localhost:%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
