// Package memory provides a mutex-guarded, map-backed store.Store.
// Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// Store keeps books, users and sessions in process memory.
type Store struct {
	mu       sync.RWMutex
	books    map[string]*domain.Book
	users    map[string]*domain.User
	sessions map[string]*domain.Session
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		books:    make(map[string]*domain.Book),
		users:    make(map[string]*domain.User),
		sessions: make(map[string]*domain.Session),
	}
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) ListBooks(_ context.Context) ([]*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*domain.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b.Clone())
	}
	domain.SortBooks(books)
	return books, nil
}

func (s *Store) GetBook(_ context.Context, isbn string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[isbn]
	if !ok {
		return nil, store.ErrBookNotFound
	}
	return b.Clone(), nil
}

func (s *Store) PutBook(_ context.Context, book *domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := map[string]string{}
	if existing, ok := s.books[book.ISBN]; ok {
		reviews = existing.Reviews
	}
	s.books[book.ISBN] = &domain.Book{
		ISBN:    book.ISBN,
		Title:   book.Title,
		Author:  book.Author,
		Reviews: reviews,
	}
	return nil
}

func (s *Store) GetReviews(ctx context.Context, isbn string) (map[string]string, error) {
	b, err := s.GetBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return b.Reviews, nil
}

func (s *Store) PutReview(_ context.Context, isbn, username, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[isbn]
	if !ok {
		return false, store.ErrBookNotFound
	}
	_, exists := b.Reviews[username]
	b.Reviews[username] = text
	return !exists, nil
}

func (s *Store) DeleteReview(_ context.Context, isbn, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[isbn]
	if !ok {
		return store.ErrBookNotFound
	}
	if _, exists := b.Reviews[username]; !exists {
		return store.ErrReviewNotFound
	}
	delete(b.Reviews, username)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return store.ErrUserExists
	}
	u := *user
	s.users[user.Username] = &u
	return nil
}

func (s *Store) GetUser(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return store.ErrSessionExists
	}
	c := *session
	s.sessions[session.ID] = &c
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	if sess.IsExpired(time.Now()) {
		return nil, store.ErrSessionExpired
	}
	c := *sess
	return &c, nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	n := 0
	for id, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}
