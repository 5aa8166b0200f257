package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/normalize"
	"github.com/listenupapp/bookshelf-server/internal/search"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

const (
	msgBookNotFound = "Book not found"
	msgNoReviews    = "No reviews found for this book"
)

// Searcher runs full-text queries over the catalog.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*search.Result, error)
}

// BookService answers read-only catalog queries.
type BookService struct {
	store    store.Store
	searcher Searcher
	logger   *slog.Logger
}

// NewBookService creates a new book service. searcher may be nil, in which
// case Search reports the feature as unavailable.
func NewBookService(store store.Store, searcher Searcher, logger *slog.Logger) *BookService {
	return &BookService{
		store:    store,
		searcher: searcher,
		logger:   logger,
	}
}

// ListBooks returns the whole catalog in natural ISBN order.
func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns the book with the given ISBN.
func (s *BookService) GetBook(ctx context.Context, isbn string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, isbn)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// BooksByAuthor returns books whose author equals author, ignoring case.
func (s *BookService) BooksByAuthor(ctx context.Context, author string) ([]*domain.Book, error) {
	want := normalize.Fold(author)

	books, err := s.filter(ctx, func(b *domain.Book) bool {
		return want != "" && normalize.Fold(b.Author) == want
	})
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, domainerrors.NotFound("No books found for this author")
	}
	return books, nil
}

// BooksByTitle returns books whose title contains title, ignoring case.
func (s *BookService) BooksByTitle(ctx context.Context, title string) ([]*domain.Book, error) {
	books, err := s.filter(ctx, func(b *domain.Book) bool {
		return normalize.ContainsFold(b.Title, title)
	})
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, domainerrors.NotFound("No books found with this title")
	}
	return books, nil
}

// GetReviews returns a book's reviews keyed by username. A book without
// reviews yields an empty map; an unknown ISBN is NotFound.
func (s *BookService) GetReviews(ctx context.Context, isbn string) (map[string]string, error) {
	reviews, err := s.store.GetReviews(ctx, isbn)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound(msgNoReviews)
		}
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	if reviews == nil {
		reviews = map[string]string{}
	}
	return reviews, nil
}

// Search runs a full-text query over titles and authors.
func (s *BookService) Search(ctx context.Context, query string, limit int) (*search.Result, error) {
	if normalize.IsBlank(query) {
		return nil, domainerrors.Validation("query is required")
	}
	if s.searcher == nil {
		return nil, domainerrors.Internal("search is not available")
	}

	result, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

func (s *BookService) filter(ctx context.Context, match func(*domain.Book) bool) ([]*domain.Book, error) {
	all, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	var out []*domain.Book
	for _, b := range all {
		if match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}
