// Package storetest is a contract suite that every store.Store backend runs.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Ping", testPing},
		{"PutAndGetBook", testPutAndGetBook},
		{"GetBookNotFound", testGetBookNotFound},
		{"ListBooksSorted", testListBooksSorted},
		{"PutBookKeepsReviews", testPutBookKeepsReviews},
		{"ReturnedBookIsCopy", testReturnedBookIsCopy},
		{"PutReviewCreateThenUpdate", testPutReviewCreateThenUpdate},
		{"ReviewsOnUnknownBook", testReviewsOnUnknownBook},
		{"DeleteReview", testDeleteReview},
		{"ConcurrentReviews", testConcurrentReviews},
		{"CreateAndGetUser", testCreateAndGetUser},
		{"DuplicateUser", testDuplicateUser},
		{"UsernamesAreCaseSensitive", testUsernamesAreCaseSensitive},
		{"SessionLifecycle", testSessionLifecycle},
		{"ExpiredSession", testExpiredSession},
		{"DeleteExpiredSessions", testDeleteExpiredSessions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func seed(t *testing.T, s store.Store, books ...*domain.Book) {
	t.Helper()
	for _, b := range books {
		require.NoError(t, s.PutBook(context.Background(), b))
	}
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}

func testPutAndGetBook(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, &domain.Book{ISBN: "1", Title: "Things Fall Apart", Author: "Chinua Achebe"})

	got, err := s.GetBook(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ISBN)
	assert.Equal(t, "Things Fall Apart", got.Title)
	assert.Equal(t, "Chinua Achebe", got.Author)
	assert.NotNil(t, got.Reviews)
	assert.Empty(t, got.Reviews)
}

func testGetBookNotFound(t *testing.T, s store.Store) {
	_, err := s.GetBook(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrBookNotFound)
	assert.True(t, store.IsNotFound(err))
}

func testListBooksSorted(t *testing.T, s store.Store) {
	ctx := context.Background()

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	seed(t, s,
		&domain.Book{ISBN: "10", Title: "Pride and Prejudice", Author: "Jane Austen"},
		&domain.Book{ISBN: "2", Title: "Fairy tales", Author: "Hans Christian Andersen"},
		&domain.Book{ISBN: "1", Title: "Things Fall Apart", Author: "Chinua Achebe"},
	)

	books, err = s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "1", books[0].ISBN)
	assert.Equal(t, "2", books[1].ISBN)
	assert.Equal(t, "10", books[2].ISBN)
}

func testPutBookKeepsReviews(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, &domain.Book{ISBN: "1", Title: "Old", Author: "A"})

	_, err := s.PutReview(ctx, "1", "alice", "great")
	require.NoError(t, err)

	seed(t, s, &domain.Book{ISBN: "1", Title: "New", Author: "B", Reviews: map[string]string{"mallory": "x"}})

	got, err := s.GetBook(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "B", got.Author)
	assert.Equal(t, map[string]string{"alice": "great"}, got.Reviews)
}

func testReturnedBookIsCopy(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, &domain.Book{ISBN: "1", Title: "T", Author: "A"})

	got, err := s.GetBook(ctx, "1")
	require.NoError(t, err)
	got.Reviews["alice"] = "sneaky"

	reviews, err := s.GetReviews(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func testPutReviewCreateThenUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, &domain.Book{ISBN: "1", Title: "T", Author: "A"})

	created, err := s.PutReview(ctx, "1", "alice", "first")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.PutReview(ctx, "1", "alice", "second")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = s.PutReview(ctx, "1", "bob", "other")
	require.NoError(t, err)

	reviews, err := s.GetReviews(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "second", "bob": "other"}, reviews)
}

func testReviewsOnUnknownBook(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetReviews(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	_, err = s.PutReview(ctx, "nope", "alice", "text")
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	err = s.DeleteReview(ctx, "nope", "alice")
	assert.ErrorIs(t, err, store.ErrBookNotFound)
}

func testDeleteReview(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, &domain.Book{ISBN: "1", Title: "T", Author: "A"})

	_, err := s.PutReview(ctx, "1", "alice", "mine")
	require.NoError(t, err)
	_, err = s.PutReview(ctx, "1", "bob", "his")
	require.NoError(t, err)

	require.NoError(t, s.DeleteReview(ctx, "1", "alice"))

	reviews, err := s.GetReviews(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bob": "his"}, reviews)

	err = s.DeleteReview(ctx, "1", "alice")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
}

func testConcurrentReviews(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, &domain.Book{ISBN: "1", Title: "T", Author: "A"})

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.PutReview(ctx, "1", fmt.Sprintf("user%d", i), fmt.Sprintf("review %d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	reviews, err := s.GetReviews(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, reviews, writers)
	for i := range writers {
		assert.Equal(t, fmt.Sprintf("review %d", i), reviews[fmt.Sprintf("user%d", i)])
	}
}

func testCreateAndGetUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: "hash", CreatedAt: now}))

	u, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.True(t, now.Equal(u.CreatedAt))

	_, err = s.GetUser(ctx, "bob")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testDuplicateUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: "one", CreatedAt: time.Now()}))

	err := s.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: "two", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, store.ErrUserExists)

	u, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "one", u.PasswordHash)
}

func testUsernamesAreCaseSensitive(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: "h", CreatedAt: time.Now()}))
	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "Alice", PasswordHash: "h", CreatedAt: time.Now()}))
}

func testSessionLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()
	sess := &domain.Session{
		ID:        "sess-1",
		Username:  "alice",
		TokenID:   "tok-1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	require.NoError(t, s.CreateSession(ctx, sess))
	assert.ErrorIs(t, s.CreateSession(ctx, sess), store.ErrSessionExists)

	got, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "tok-1", got.TokenID)

	require.NoError(t, s.DeleteSession(ctx, "sess-1"))
	_, err = s.GetSession(ctx, "sess-1")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	// Deleting twice is harmless.
	assert.NoError(t, s.DeleteSession(ctx, "sess-1"))
}

func testExpiredSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.CreateSession(ctx, &domain.Session{
		ID:        "old",
		Username:  "alice",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}))

	_, err := s.GetSession(ctx, "old")
	assert.ErrorIs(t, err, store.ErrSessionExpired)
}

func testDeleteExpiredSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()

	for i, exp := range []time.Duration{-time.Hour, -time.Minute, time.Hour} {
		require.NoError(t, s.CreateSession(ctx, &domain.Session{
			ID:        fmt.Sprintf("s%d", i),
			Username:  "alice",
			CreatedAt: now.Add(-2 * time.Hour),
			ExpiresAt: now.Add(exp),
		}))
	}

	n, err := s.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetSession(ctx, "s2")
	assert.NoError(t, err)
	_, err = s.GetSession(ctx, "s0")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
