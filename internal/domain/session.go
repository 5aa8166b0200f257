package domain

import "time"

// Session is the server-side marker that a username has logged in.
// Access tokens carry the session ID, so deleting the session revokes them.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	TokenID   string    `json:"token_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
