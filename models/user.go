package models

import "time"

// User represents a user in the system
type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"` // Never send password in JSON
	Name         string    `json:"name"`
	Picture      string    `json:"picture"`
	Bio          string    `json:"bio"`
	Age          *int      `json:"age"`
	Country      string    `json:"country"`
	Interests    string    `json:"interests"`
	FriendsCount int       `json:"friends_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Picture      string    `json:"picture"`
	Bio          string    `json:"bio"`
	Age          *int      `json:"age"`
	Country      string    `json:"country"`
	Interests    string    `json:"interests"`
	FriendsCount int       `json:"friends_count"`
	CreatedAt    time.Time `json:"created_at"`
	Online       bool      `json:"online,omitempty"`
}

// ProfileUpdate carries the mutable profile fields
type ProfileUpdate struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Picture   string `json:"picture"`
	Bio       string `json:"bio"`
	Age       *int   `json:"age"`
	Country   string `json:"country"`
	Interests string `json:"interests"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Picture:      u.Picture,
		Bio:          u.Bio,
		Age:          u.Age,
		Country:      u.Country,
		Interests:    u.Interests,
		FriendsCount: u.FriendsCount,
		CreatedAt:    u.CreatedAt,
	}
}
