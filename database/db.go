package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tinyroom/models"
)

// DB is the durable store behind the ledgers
type DB struct {
	conn *sql.DB
}

// Open sets up the database connection and creates tables
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close releases the underlying connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) createTables() error {
	tables := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		name TEXT DEFAULT '',
		picture TEXT DEFAULT '',
		bio TEXT DEFAULT '',
		age INTEGER,
		country TEXT DEFAULT '',
		interests TEXT DEFAULT '',
		friends_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS friends (
		request_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		friend_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (friend_id) REFERENCES users(id) ON DELETE CASCADE,
		UNIQUE(user_id, friend_id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT UNIQUE NOT NULL,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'text',
		reply_to TEXT DEFAULT '',
		reactions TEXT NOT NULL DEFAULT '{}',
		pinned INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_friends_user ON friends(user_id);
	CREATE INDEX IF NOT EXISTS idx_friends_friend ON friends(friend_id);
	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at, seq);
	`

	_, err := db.conn.Exec(tables)
	return err
}

// User queries

const userColumns = `id, username, email, password, name, picture, bio, age, country, interests, friends_count, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Name,
		&user.Picture, &user.Bio, &user.Age, &user.Country, &user.Interests,
		&user.FriendsCount, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user
func (db *DB) CreateUser(user *models.User) error {
	_, err := db.conn.Exec(
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.Password, user.Name,
		user.Picture, user.Bio, user.Age, user.Country, user.Interests,
		user.FriendsCount, user.CreatedAt,
	)
	return err
}

// GetUserByID retrieves a user by their ID
func (db *DB) GetUserByID(id string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByUsername retrieves a user by their username
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// GetUserByEmail retrieves a user by their email
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// UpdateProfile overwrites the mutable profile fields of a user
func (db *DB) UpdateProfile(id string, profile models.ProfileUpdate) error {
	_, err := db.conn.Exec(
		`UPDATE users SET username = ?, name = ?, picture = ?, bio = ?, age = ?, country = ?, interests = ? WHERE id = ?`,
		profile.Username, profile.Name, profile.Picture, profile.Bio,
		profile.Age, profile.Country, profile.Interests, id,
	)
	return err
}

// SearchUsers searches users by username or name, excluding the searcher
func (db *DB) SearchUsers(query, excludeID string, limit int) ([]models.UserResponse, error) {
	rows, err := db.conn.Query(
		`SELECT `+userColumns+` FROM users
		WHERE id != ? AND (username LIKE ? OR name LIKE ?)
		LIMIT ?`,
		excludeID, "%"+query+"%", "%"+query+"%", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserResponse
	for rows.Next() {
		user := models.User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.Password, &user.Name,
			&user.Picture, &user.Bio, &user.Age, &user.Country, &user.Interests,
			&user.FriendsCount, &user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user.ToResponse())
	}
	return users, rows.Err()
}

// Session queries

// CreateSession creates a new session for a user
func (db *DB) CreateSession(token, userID string, createdAt, expiresAt time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
		token, userID, createdAt, expiresAt,
	)
	return err
}

// GetSession retrieves a session by its token. Expiry is not checked here;
// the session store decides what an expired row means.
func (db *DB) GetSession(token string) (*models.Session, error) {
	session := &models.Session{}
	err := db.conn.QueryRow(
		"SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?",
		token,
	).Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// Friend queries

// FriendCount returns the denormalized accepted-friend counter for a user
func (db *DB) FriendCount(userID string) (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT friends_count FROM users WHERE id = ?", userID).Scan(&count)
	return count, err
}

// AcceptedFriendCount counts the accepted friendship records referencing a
// user. The denormalized friends_count column must always agree with it.
func (db *DB) AcceptedFriendCount(userID string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM friends WHERE (user_id = ? OR friend_id = ?) AND status = 'accepted'`,
		userID, userID,
	).Scan(&count)
	return count, err
}

// GetFriendship retrieves the friendship record between two users, in either
// direction and in any status
func (db *DB) GetFriendship(userID, friendID string) (*models.Friendship, error) {
	f := &models.Friendship{}
	err := db.conn.QueryRow(
		`SELECT request_id, user_id, friend_id, status, created_at FROM friends
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
		userID, friendID, friendID, userID,
	).Scan(&f.RequestID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GetPendingRequest retrieves a pending request addressed to recipientID
func (db *DB) GetPendingRequest(requestID, recipientID string) (*models.Friendship, error) {
	f := &models.Friendship{}
	err := db.conn.QueryRow(
		`SELECT request_id, user_id, friend_id, status, created_at FROM friends
		WHERE request_id = ? AND friend_id = ? AND status = 'pending'`,
		requestID, recipientID,
	).Scan(&f.RequestID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CreateFriendship inserts a new friendship record
func (db *DB) CreateFriendship(f *models.Friendship) error {
	_, err := db.conn.Exec(
		"INSERT INTO friends (request_id, user_id, friend_id, status, created_at) VALUES (?, ?, ?, ?, ?)",
		f.RequestID, f.UserID, f.FriendID, f.Status, f.CreatedAt,
	)
	return err
}

// AcceptFriendship flips a pending record to accepted and increments both
// friend counters in the same transaction
func (db *DB) AcceptFriendship(requestID, userID, friendID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE friends SET status = 'accepted' WHERE request_id = ? AND status = 'pending'",
		requestID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec("UPDATE users SET friends_count = friends_count + 1 WHERE id IN (?, ?)", userID, friendID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFriendship removes a pending record without touching counters
func (db *DB) DeleteFriendship(requestID string) error {
	_, err := db.conn.Exec("DELETE FROM friends WHERE request_id = ?", requestID)
	return err
}

// RemoveFriendship deletes an accepted record and decrements both friend
// counters in the same transaction
func (db *DB) RemoveFriendship(requestID, userID, friendID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"DELETE FROM friends WHERE request_id = ? AND status = 'accepted'",
		requestID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec("UPDATE users SET friends_count = friends_count - 1 WHERE id IN (?, ?)", userID, friendID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetFriends retrieves the profiles of all accepted friends of a user
func (db *DB) GetFriends(userID string) ([]models.UserResponse, error) {
	rows, err := db.conn.Query(
		`SELECT u.id, u.username, u.name, u.picture, u.bio, u.age, u.country, u.interests, u.friends_count, u.created_at
		FROM friends f
		JOIN users u ON u.id = CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = ? OR f.friend_id = ?) AND f.status = 'accepted'`,
		userID, userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []models.UserResponse
	for rows.Next() {
		var user models.UserResponse
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Name, &user.Picture, &user.Bio,
			&user.Age, &user.Country, &user.Interests, &user.FriendsCount, &user.CreatedAt,
		); err != nil {
			return nil, err
		}
		friends = append(friends, user)
	}
	return friends, rows.Err()
}

// GetPendingFriendRequests retrieves pending incoming requests with the
// requester's profile attached
func (db *DB) GetPendingFriendRequests(userID string) ([]models.FriendRequest, error) {
	rows, err := db.conn.Query(
		`SELECT f.request_id, f.created_at,
		        u.id, u.username, u.name, u.picture, u.bio, u.age, u.country, u.interests, u.friends_count, u.created_at
		FROM friends f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = ? AND f.status = 'pending'`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(
			&req.RequestID, &req.CreatedAt,
			&req.From.ID, &req.From.Username, &req.From.Name, &req.From.Picture,
			&req.From.Bio, &req.From.Age, &req.From.Country, &req.From.Interests,
			&req.From.FriendsCount, &req.From.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Message queries

// CountMessages returns the number of messages currently retained
func (db *DB) CountMessages() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	return count, err
}

// InsertMessage appends a message to the room log
func (db *DB) InsertMessage(m *models.Message) error {
	reactions, err := json.Marshal(m.Reactions)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`INSERT INTO messages (message_id, user_id, content, type, reply_to, reactions, pinned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Content, m.Type, m.ReplyTo, string(reactions), m.Pinned, m.CreatedAt,
	)
	return err
}

// DeleteOldestMessage removes the single oldest message by creation time,
// insertion order breaking ties
func (db *DB) DeleteOldestMessage() error {
	_, err := db.conn.Exec(
		`DELETE FROM messages WHERE seq = (SELECT seq FROM messages ORDER BY created_at, seq LIMIT 1)`,
	)
	return err
}

// GetMessage retrieves a message by its ID
func (db *DB) GetMessage(id string) (*models.Message, error) {
	m := &models.Message{}
	var reactions string
	err := db.conn.QueryRow(
		`SELECT message_id, user_id, content, type, reply_to, reactions, pinned, created_at
		FROM messages WHERE message_id = ?`,
		id,
	).Scan(&m.ID, &m.UserID, &m.Content, &m.Type, &m.ReplyTo, &reactions, &m.Pinned, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(reactions), &m.Reactions); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateReactions overwrites the reaction map of a message
func (db *DB) UpdateReactions(id string, reactions map[string]string) error {
	data, err := json.Marshal(reactions)
	if err != nil {
		return err
	}
	result, err := db.conn.Exec("UPDATE messages SET reactions = ? WHERE message_id = ?", string(data), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMessage removes a message by its ID
func (db *DB) DeleteMessage(id string) error {
	result, err := db.conn.Exec("DELETE FROM messages WHERE message_id = ?", id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetMessages retrieves up to limit messages in creation order, each joined
// with its author's profile
func (db *DB) GetMessages(limit int) ([]models.MessageWithUser, error) {
	rows, err := db.conn.Query(
		`SELECT m.message_id, m.user_id, m.content, m.type, m.reply_to, m.reactions, m.pinned, m.created_at,
		        u.id, u.username, u.name, u.picture, u.bio, u.age, u.country, u.interests, u.friends_count, u.created_at
		FROM messages m
		JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at, m.seq
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.MessageWithUser
	for rows.Next() {
		var msg models.MessageWithUser
		var reactions string
		if err := rows.Scan(
			&msg.ID, &msg.UserID, &msg.Content, &msg.Type, &msg.ReplyTo, &reactions, &msg.Pinned, &msg.CreatedAt,
			&msg.User.ID, &msg.User.Username, &msg.User.Name, &msg.User.Picture,
			&msg.User.Bio, &msg.User.Age, &msg.User.Country, &msg.User.Interests,
			&msg.User.FriendsCount, &msg.User.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(reactions), &msg.Reactions); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
