package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/normalize"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// MaxReviewLength is the longest review, in characters, that is accepted.
const MaxReviewLength = 5000

const msgNoReview = "No review found for this user"

// ReviewService writes reviews. Callers may only touch their own entry.
type ReviewService struct {
	store       store.Store
	deleteDelay time.Duration
	logger      *slog.Logger
}

// NewReviewService creates a review service. deleteDelay, when positive, is
// waited out before a review is removed.
func NewReviewService(store store.Store, deleteDelay time.Duration, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:       store,
		deleteDelay: deleteDelay,
		logger:      logger,
	}
}

// ReviewResult describes a stored review.
type ReviewResult struct {
	ISBN     string `json:"isbn"`
	Username string `json:"username"`
	Review   string `json:"review"`
	Created  bool   `json:"created"`
	Message  string `json:"message"`
}

// PutReview adds or replaces username's review of the book.
func (s *ReviewService) PutReview(ctx context.Context, username, isbn, text string) (*ReviewResult, error) {
	if _, err := s.store.GetBook(ctx, isbn); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if normalize.IsBlank(text) {
		return nil, domainerrors.Validation("Review text is required")
	}
	if utf8.RuneCountInString(text) > MaxReviewLength {
		return nil, domainerrors.Validationf("Review must not exceed %d characters", MaxReviewLength)
	}

	created, err := s.store.PutReview(ctx, isbn, username, text)
	if err != nil {
		// The book may have vanished in a catalog reload.
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("put review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Review saved", "isbn", isbn, "username", username, "created", created)
	}

	return &ReviewResult{
		ISBN:     isbn,
		Username: username,
		Review:   text,
		Created:  created,
		Message:  "Review added/modified successfully",
	}, nil
}

// DeleteReview removes username's review of the book. Reviews written by
// other users are never affected.
func (s *ReviewService) DeleteReview(ctx context.Context, username, isbn string) error {
	book, err := s.store.GetBook(ctx, isbn)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound(msgBookNotFound)
		}
		return fmt.Errorf("get book: %w", err)
	}
	if !book.HasReviewBy(username) {
		return domainerrors.NotFound(msgNoReview)
	}

	if err := s.wait(ctx); err != nil {
		return err
	}

	if err := s.store.DeleteReview(ctx, isbn, username); err != nil {
		switch {
		case errors.Is(err, store.ErrReviewNotFound):
			return domainerrors.NotFound(msgNoReview)
		case errors.Is(err, store.ErrBookNotFound):
			return domainerrors.NotFound(msgBookNotFound)
		}
		return fmt.Errorf("delete review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Review deleted", "isbn", isbn, "username", username)
	}

	return nil
}

func (s *ReviewService) wait(ctx context.Context) error {
	if s.deleteDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(s.deleteDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
