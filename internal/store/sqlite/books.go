package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// ListBooks returns every book with its reviews, in natural ISBN order.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.queryBooks(ctx)
	if err != nil {
		return nil, err
	}

	byISBN := make(map[string]*domain.Book, len(books))
	for _, b := range books {
		byISBN[b.ISBN] = b
	}

	// Rows are read one query at a time; the in-memory database has a
	// single connection.
	rows, err := s.db.QueryContext(ctx, `SELECT isbn, username, text FROM reviews`)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isbn, username, text string
		if err := rows.Scan(&isbn, &username, &text); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if b, ok := byISBN[isbn]; ok {
			b.Reviews[username] = text
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	domain.SortBooks(books)
	return books, nil
}

func (s *Store) queryBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT isbn, title, author FROM books`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b := &domain.Book{Reviews: map[string]string{}}
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// GetBook retrieves a book and its reviews by ISBN.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, isbn string) (*domain.Book, error) {
	b := &domain.Book{}
	err := s.db.QueryRowContext(ctx,
		`SELECT isbn, title, author FROM books WHERE isbn = ?`, isbn).
		Scan(&b.ISBN, &b.Title, &b.Author)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	b.Reviews, err = s.loadReviews(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// PutBook inserts or updates a catalog entry. Reviews live in their own
// table and are untouched.
func (s *Store) PutBook(ctx context.Context, book *domain.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (isbn, title, author) VALUES (?, ?, ?)
			ON CONFLICT(isbn) DO UPDATE SET title = excluded.title, author = excluded.author`,
			book.ISBN, book.Title, book.Author)
		if err != nil {
			return fmt.Errorf("put book: %w", err)
		}
		return nil
	})
}

// GetReviews returns the username-to-review mapping for a book.
func (s *Store) GetReviews(ctx context.Context, isbn string) (map[string]string, error) {
	exists, err := s.bookExists(ctx, s.db, isbn)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrBookNotFound
	}
	return s.loadReviews(ctx, isbn)
}

// PutReview upserts the user's review for a book.
func (s *Store) PutReview(ctx context.Context, isbn, username, text string) (bool, error) {
	created := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.bookExists(ctx, tx, isbn)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrBookNotFound
		}

		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reviews WHERE isbn = ? AND username = ?`, isbn, username).Scan(&n); err != nil {
			return fmt.Errorf("check review: %w", err)
		}
		created = n == 0

		_, err = tx.ExecContext(ctx, `
			INSERT INTO reviews (isbn, username, text, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(isbn, username) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
			isbn, username, text, formatTime(time.Now()))
		if err != nil {
			return fmt.Errorf("put review: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// DeleteReview removes the user's review for a book.
func (s *Store) DeleteReview(ctx context.Context, isbn, username string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.bookExists(ctx, tx, isbn)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrBookNotFound
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM reviews WHERE isbn = ? AND username = ?`, isbn, username)
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrReviewNotFound
		}
		return nil
	})
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) bookExists(ctx context.Context, q querier, isbn string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM books WHERE isbn = ?`, isbn).Scan(&n); err != nil {
		return false, fmt.Errorf("check book: %w", err)
	}
	return n > 0, nil
}

func (s *Store) loadReviews(ctx context.Context, isbn string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, text FROM reviews WHERE isbn = ?`, isbn)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make(map[string]string)
	for rows.Next() {
		var username, text string
		if err := rows.Scan(&username, &text); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews[username] = text
	}
	return reviews, rows.Err()
}
