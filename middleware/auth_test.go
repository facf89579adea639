package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"tinyroom/database"
	"tinyroom/ledger"
	"tinyroom/models"
)

func setup(t *testing.T) (*ledger.SessionStore, string) {
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

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "hashed",
		CreatedAt: time.Now().UTC(),
	}
	if err := db.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	sessions := ledger.NewSessionStore(db)
	token, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return sessions, token
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			t.Error("No user in context")
			return
		}
		w.Write([]byte(user.Username))
	})
}

func TestAuthWithHeader(t *testing.T) {
	sessions, token := setup(t)
	handler := Auth(sessions)(echoUser(t))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Session-ID", token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "alice" {
		t.Errorf("Expected alice, got %q", rr.Body.String())
	}
}

func TestAuthWithCookie(t *testing.T) {
	sessions, token := setup(t)
	handler := Auth(sessions)(echoUser(t))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
}

func TestAuthRejectsMissingSession(t *testing.T) {
	sessions, _ := setup(t)
	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler called without a session")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestAuthRejectsUnknownToken(t *testing.T) {
	sessions, _ := setup(t)
	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler called with a bogus token")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Session-ID", "bogus")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}
