package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// ListBooks returns every book in natural ISBN order.
func (s *BadgerStore) ListBooks(_ context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	err := s.iterate(bookPrefix, func(val []byte) error {
		var book domain.Book
		if err := json.Unmarshal(val, &book); err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}
		books = append(books, book.Clone())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	domain.SortBooks(books)
	return books, nil
}

// GetBook retrieves a book by ISBN.
func (s *BadgerStore) GetBook(_ context.Context, isbn string) (*domain.Book, error) {
	key := buildKey(bookPrefix, isbn)
	defer releaseKey(key)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	return book.Clone(), nil
}

// PutBook creates or updates a catalog entry, keeping any existing reviews.
func (s *BadgerStore) PutBook(_ context.Context, book *domain.Book) error {
	key := buildKey(bookPrefix, book.ISBN)
	defer releaseKey(key)

	return s.update(func(txn *badger.Txn) error {
		next := &domain.Book{
			ISBN:    book.ISBN,
			Title:   book.Title,
			Author:  book.Author,
			Reviews: map[string]string{},
		}

		var existing domain.Book
		err := getTxn(txn, key, &existing)
		switch {
		case err == nil:
			if existing.Reviews != nil {
				next.Reviews = existing.Reviews
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("get book: %w", err)
		}

		return setTxn(txn, key, next)
	})
}

// GetReviews returns the username-to-review mapping for a book.
func (s *BadgerStore) GetReviews(ctx context.Context, isbn string) (map[string]string, error) {
	book, err := s.GetBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return book.Reviews, nil
}

// PutReview upserts the user's review under the book in a single transaction.
func (s *BadgerStore) PutReview(_ context.Context, isbn, username, text string) (bool, error) {
	key := buildKey(bookPrefix, isbn)
	defer releaseKey(key)

	created := false
	err := s.update(func(txn *badger.Txn) error {
		var book domain.Book
		if err := getTxn(txn, key, &book); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("get book: %w", err)
		}

		if book.Reviews == nil {
			book.Reviews = map[string]string{}
		}
		_, exists := book.Reviews[username]
		created = !exists
		book.Reviews[username] = text

		return setTxn(txn, key, &book)
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// DeleteReview removes the user's review from the book.
func (s *BadgerStore) DeleteReview(_ context.Context, isbn, username string) error {
	key := buildKey(bookPrefix, isbn)
	defer releaseKey(key)

	return s.update(func(txn *badger.Txn) error {
		var book domain.Book
		if err := getTxn(txn, key, &book); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("get book: %w", err)
		}

		if _, ok := book.Reviews[username]; !ok {
			return ErrReviewNotFound
		}
		delete(book.Reviews, username)

		return setTxn(txn, key, &book)
	})
}
