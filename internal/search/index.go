// Package search provides full-text search over the book catalog using an
// in-memory bleve index.
package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// SearchIndex wraps a bleve index of catalog books.
//
// All methods are safe for concurrent use. Rebuild swaps in a fresh index
// under the write lock, so searches never see a half-built catalog.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex(logger *slog.Logger) (*SearchIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SearchIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces a single book.
func (s *SearchIndex) IndexBook(b *domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(b.ISBN, NewBookDocument(b).ToMap())
}

// IndexBooks adds or replaces books in one batch.
func (s *SearchIndex) IndexBooks(books []*domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexBatch(s.index, books)
}

// Rebuild replaces the whole index with books.
func (s *SearchIndex) Rebuild(books []*domain.Book) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexBatch(fresh, books); err != nil {
		_ = fresh.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}

	s.logger.Debug("search index rebuilt", "books", len(books))
	return nil
}

// DeleteBook removes a book from the index.
func (s *SearchIndex) DeleteBook(isbn string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(isbn)
}

// DocumentCount returns the number of indexed books.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

func indexBatch(index bleve.Index, books []*domain.Book) error {
	batch := index.NewBatch()
	for _, b := range books {
		if err := batch.Index(b.ISBN, NewBookDocument(b).ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", b.ISBN, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("execute batch: %w", err)
	}
	return nil
}
