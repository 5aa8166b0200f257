package store

import "errors"

var (
	// ErrBookNotFound is returned when no book has the requested ISBN.
	ErrBookNotFound = errors.New("book not found")
	// ErrReviewNotFound is returned when the user has no review on the book.
	ErrReviewNotFound = errors.New("review not found")
	// ErrUserNotFound is returned when a username is not registered.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering a username that is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when the session exists but has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionExists is returned when creating a session with a duplicate ID.
	ErrSessionExists = errors.New("session already exists")
)

// IsNotFound reports whether err is one of the store's not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrReviewNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}
