// Package store defines persistence for the bookshelf server and provides the
// Badger-backed implementation. Alternative backends live in subpackages.
package store

import (
	"context"

	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// Store defines the interface for all persistence operations.
// Implementations must be safe for concurrent use; every mutation is atomic.
type Store interface {
	// Lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Books
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	GetBook(ctx context.Context, isbn string) (*domain.Book, error)
	// PutBook creates or updates a catalog entry. Existing reviews are kept;
	// the Reviews field of book is ignored.
	PutBook(ctx context.Context, book *domain.Book) error

	// Reviews (embedded in books, one per username)
	GetReviews(ctx context.Context, isbn string) (map[string]string, error)
	// PutReview upserts username's review. Returns true when a new entry was created.
	PutReview(ctx context.Context, isbn, username, text string) (bool, error)
	DeleteReview(ctx context.Context, isbn, username string) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, username string) (*domain.User, error)

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}
