package domain

import "time"

// User is a registered account. Usernames are unique and never change.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"` // Filter from API responses
	CreatedAt    time.Time `json:"created_at"`
}
