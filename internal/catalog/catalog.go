// Package catalog loads the book catalog into the store: the built-in seed,
// or a JSON file that is reloaded when it changes.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/normalize"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

//go:embed seed.json
var seedJSON []byte

// Entry is one book in a catalog file, keyed by ISBN in the enclosing object.
type Entry struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Seed returns the built-in catalog.
func Seed() []*domain.Book {
	books, err := Parse(seedJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid embedded seed: %v", err))
	}
	return books
}

// Load reads a catalog file. An empty path returns the built-in seed.
func Load(path string) ([]*domain.Book, error) {
	if path == "" {
		return Seed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	books, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return books, nil
}

// Parse decodes a catalog document of the form
// {"<isbn>": {"title": "...", "author": "..."}}. Books come back in natural
// ISBN order. Entries without a title are rejected; a missing author becomes
// "Unknown".
func Parse(data []byte) ([]*domain.Book, error) {
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var errs []error
	books := make([]*domain.Book, 0, len(entries))
	for isbn, e := range entries {
		isbn = strings.TrimSpace(isbn)
		switch {
		case isbn == "":
			errs = append(errs, errors.New("entry with empty isbn"))
			continue
		case normalize.IsBlank(e.Title):
			errs = append(errs, fmt.Errorf("isbn %s: title is required", isbn))
			continue
		}

		author := strings.TrimSpace(e.Author)
		if author == "" {
			author = "Unknown"
		}

		books = append(books, &domain.Book{
			ISBN:    isbn,
			Title:   strings.TrimSpace(e.Title),
			Author:  author,
			Reviews: map[string]string{},
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	domain.SortBooks(books)
	return books, nil
}

// Apply upserts books into s. Reviews already stored for a book are kept,
// and books missing from the list are left in place.
func Apply(ctx context.Context, s store.Store, books []*domain.Book) error {
	for _, b := range books {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.PutBook(ctx, b); err != nil {
			return fmt.Errorf("put book %s: %w", b.ISBN, err)
		}
	}
	return nil
}
