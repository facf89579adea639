package ledger

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"tinyroom/database"
	"tinyroom/hub"
	"tinyroom/models"
)

// setupDB creates a ledger test database backed by a temp sqlite file
func setupDB(t *testing.T) *database.DB {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "tinyroom-test-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpfile.Close()
	os.Remove(tmpfile.Name())

	db, err := database.Open(tmpfile.Name())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(tmpfile.Name())
	})
	return db
}

func createUser(t *testing.T, db *database.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed",
		Name:      username,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// connect registers a bare client for a user so tests can observe delivered
// events on its Send channel
func connect(h *hub.Hub, userID string) *hub.Client {
	client := hub.NewClient(userID, nil)
	h.Register(client)
	return client
}

func readEvent(t *testing.T, client *hub.Client) models.Event {
	t.Helper()

	select {
	case data := <-client.Send:
		var event models.Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
		return models.Event{}
	}
}

func expectNoEvent(t *testing.T, client *hub.Client) {
	t.Helper()

	select {
	case data := <-client.Send:
		t.Fatalf("Expected no event, got %s", data)
	default:
	}
}
