package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"tinyroom/hub"
	"tinyroom/models"
)

func TestSendEmptyContent(t *testing.T) {
	db := setupDB(t)
	messages := NewMessageLedger(db, hub.New())
	alice := createUser(t, db, "alice")

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := messages.Send(alice, content, "text", ""); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Send(%q): expected ErrEmptyContent, got %v", content, err)
		}
	}
}

func TestSendBroadcastsToEveryone(t *testing.T) {
	db := setupDB(t)
	h := hub.New()
	messages := NewMessageLedger(db, h)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	aliceConn := connect(h, alice.ID)
	bobConn := connect(h, bob.ID)

	sent, err := messages.Send(alice, "hi", "text", "")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sent.User.ID != alice.ID {
		t.Errorf("Expected author profile attached, got %+v", sent.User)
	}

	for _, conn := range []*hub.Client{aliceConn, bobConn} {
		event := readEvent(t, conn)
		if event.Type != models.EventNewMessage {
			t.Errorf("Expected %s, got %s", models.EventNewMessage, event.Type)
		}
		if event.Message == nil || event.Message.ID != sent.ID {
			t.Errorf("Expected message %s, got %+v", sent.ID, event.Message)
		}
	}
}

func TestRetentionCap(t *testing.T) {
	db := setupDB(t)
	messages := NewMessageLedger(db, hub.New())
	alice := createUser(t, db, "alice")

	if _, err := messages.Send(alice, "hi", "text", ""); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	list, err := messages.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(list))
	}

	for i := 2; i <= 12; i++ {
		if _, err := messages.Send(alice, fmt.Sprintf("message %d", i), "text", ""); err != nil {
			t.Fatalf("Send %d failed: %v", i, err)
		}
	}

	list, err = messages.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != models.MaxMessages {
		t.Fatalf("Expected %d messages, got %d", models.MaxMessages, len(list))
	}

	// Oldest two evicted, the rest in original relative order
	for i, msg := range list {
		want := fmt.Sprintf("message %d", i+3)
		if msg.Content != want {
			t.Errorf("Message %d: got %q, want %q", i, msg.Content, want)
		}
	}
}

func TestConcurrentSendsAtCapacity(t *testing.T) {
	db := setupDB(t)
	messages := NewMessageLedger(db, hub.New())
	alice := createUser(t, db, "alice")

	for i := 0; i < models.MaxMessages-1; i++ {
		if _, err := messages.Send(alice, fmt.Sprintf("seed %d", i), "text", ""); err != nil {
			t.Fatalf("Seed send failed: %v", err)
		}
	}

	const senders = 8
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := messages.Send(alice, fmt.Sprintf("racer %d", i), "text", ""); err != nil {
				t.Errorf("Concurrent send failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	count, err := db.CountMessages()
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != models.MaxMessages {
		t.Errorf("Expected exactly %d messages after concurrent sends, got %d", models.MaxMessages, count)
	}
}

func TestReactionIdempotentUpsert(t *testing.T) {
	db := setupDB(t)
	h := hub.New()
	messages := NewMessageLedger(db, h)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	sent, err := messages.Send(alice, "react to me", "text", "")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	bobConn := connect(h, bob.ID)

	if err := messages.React(sent.ID, bob.ID, "👍"); err != nil {
		t.Fatalf("React failed: %v", err)
	}
	if err := messages.React(sent.ID, bob.ID, "👍"); err != nil {
		t.Fatalf("Repeat react failed: %v", err)
	}

	stored, err := db.GetMessage(sent.ID)
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if len(stored.Reactions) != 1 || stored.Reactions[bob.ID] != "👍" {
		t.Errorf("Expected single 👍 from bob, got %v", stored.Reactions)
	}

	// A different emoji overwrites, last write wins
	if err := messages.React(sent.ID, bob.ID, "🎉"); err != nil {
		t.Fatalf("Overwrite react failed: %v", err)
	}
	stored, err = db.GetMessage(sent.ID)
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if len(stored.Reactions) != 1 || stored.Reactions[bob.ID] != "🎉" {
		t.Errorf("Expected single 🎉 from bob, got %v", stored.Reactions)
	}

	// Each react broadcast the full updated map
	for i := 0; i < 3; i++ {
		event := readEvent(t, bobConn)
		if event.Type != models.EventReactionUpdate {
			t.Errorf("Expected %s, got %s", models.EventReactionUpdate, event.Type)
		}
		if event.MessageID != sent.ID {
			t.Errorf("Expected message id %s, got %s", sent.ID, event.MessageID)
		}
		if event.Reactions[bob.ID] == "" {
			t.Errorf("Expected bob's reaction in map, got %v", event.Reactions)
		}
	}
}

func TestReactUnknownMessage(t *testing.T) {
	db := setupDB(t)
	messages := NewMessageLedger(db, hub.New())
	alice := createUser(t, db, "alice")

	if err := messages.React("gone", alice.ID, "👍"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteByNonAuthor(t *testing.T) {
	db := setupDB(t)
	messages := NewMessageLedger(db, hub.New())
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	sent, err := messages.Send(alice, "mine", "text", "")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if err := messages.Delete(sent.ID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	// The message is untouched
	stored, err := db.GetMessage(sent.ID)
	if err != nil {
		t.Fatalf("Message should still exist: %v", err)
	}
	if stored.Content != "mine" {
		t.Errorf("Message changed: %+v", stored)
	}
}

func TestDeleteByAuthor(t *testing.T) {
	db := setupDB(t)
	h := hub.New()
	messages := NewMessageLedger(db, h)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	sent, err := messages.Send(alice, "fleeting", "text", "")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	bobConn := connect(h, bob.ID)

	if err := messages.Delete(sent.ID, alice.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	event := readEvent(t, bobConn)
	if event.Type != models.EventMessageDeleted || event.MessageID != sent.ID {
		t.Errorf("Expected %s for %s, got %+v", models.EventMessageDeleted, sent.ID, event)
	}

	if err := messages.Delete(sent.ID, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestListJoinsAuthorProfile(t *testing.T) {
	db := setupDB(t)
	messages := NewMessageLedger(db, hub.New())
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if _, err := messages.Send(alice, "from alice", "text", ""); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := messages.Send(bob, "from bob", "text", ""); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	list, err := messages.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(list))
	}
	if list[0].User.Username != "alice" || list[1].User.Username != "bob" {
		t.Errorf("Expected author profiles in order, got %s then %s",
			list[0].User.Username, list[1].User.Username)
	}
}
