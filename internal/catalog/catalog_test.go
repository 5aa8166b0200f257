package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store/memory"
)

func TestSeed(t *testing.T) {
	books := Seed()
	require.Len(t, books, 10)

	assert.Equal(t, "1", books[0].ISBN)
	assert.Equal(t, "Things Fall Apart", books[0].Title)
	assert.Equal(t, "Chinua Achebe", books[0].Author)
	assert.Equal(t, "10", books[9].ISBN)
	assert.Equal(t, "Samuel Beckett", books[9].Author)

	for _, b := range books {
		assert.NotNil(t, b.Reviews, b.ISBN)
		assert.Empty(t, b.Reviews, b.ISBN)
	}
}

func TestParse(t *testing.T) {
	books, err := Parse([]byte(`{
		"978-1": {"title": " Dracula ", "author": "Bram Stoker"},
		"2": {"title": "Beowulf"}
	}`))
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "2", books[0].ISBN)
	assert.Equal(t, "Unknown", books[0].Author)
	assert.Equal(t, "978-1", books[1].ISBN)
	assert.Equal(t, "Dracula", books[1].Title)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `[`},
		{"wrong shape", `["a"]`},
		{"missing title", `{"1": {"author": "x"}}`},
		{"blank isbn", `{" ": {"title": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	books, err := Load("")
	require.NoError(t, err)
	assert.Len(t, books, 10)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"42": {"title": "Dracula", "author": "Bram Stoker"}}`), 0o644))
	books, err = Load(path)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "42", books[0].ISBN)
}

func TestApply_KeepsReviews(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, Apply(ctx, s, Seed()))
	_, err := s.PutReview(ctx, "1", "alice", "great")
	require.NoError(t, err)

	require.NoError(t, Apply(ctx, s, []*domain.Book{{ISBN: "1", Title: "Things Fall Apart (2nd ed.)", Author: "Chinua Achebe"}}))

	b, err := s.GetBook(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Things Fall Apart (2nd ed.)", b.Title)
	assert.Equal(t, map[string]string{"alice": "great"}, b.Reviews)

	all, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestApply_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Apply(ctx, memory.New(), Seed())
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingIndexer struct {
	mu     sync.Mutex
	builds [][]*domain.Book
}

func (r *recordingIndexer) Rebuild(books []*domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds = append(r.builds, books)
	return nil
}

func (r *recordingIndexer) last() []*domain.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.builds) == 0 {
		return nil
	}
	return r.builds[len(r.builds)-1]
}

func TestReloader_Reload(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	idx := &recordingIndexer{}

	r := NewReloader("", s, idx, slog.New(slog.DiscardHandler))
	require.NoError(t, r.Reload(ctx))

	assert.Len(t, idx.last(), 10)
	b, err := s.GetBook(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, "Pride and Prejudice", b.Title)
}

func TestReloader_ReloadBadFileKeepsCatalog(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, Apply(ctx, s, Seed()))

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{oops`), 0o644))

	r := NewReloader(path, s, nil, slog.New(slog.DiscardHandler))
	assert.Error(t, r.Reload(ctx))

	all, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestReloader_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"title": "Old", "author": "A"}}`), 0o644))

	s := memory.New()
	idx := &recordingIndexer{}
	r := NewReloader(path, s, idx, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Reload(ctx))

	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, 20*time.Millisecond) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"title": "New", "author": "A"}, "2": {"title": "Two"}}`), 0o644))

	require.Eventually(t, func() bool {
		b, err := s.GetBook(context.Background(), "2")
		return err == nil && b.Title == "Two"
	}, 3*time.Second, 20*time.Millisecond)

	b, err := s.GetBook(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "New", b.Title)
	assert.Eventually(t, func() bool { return len(idx.last()) == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestReloader_WatchWithoutPath(t *testing.T) {
	r := NewReloader("", memory.New(), nil, slog.New(slog.DiscardHandler))
	assert.NoError(t, r.Watch(context.Background(), 0))
}
