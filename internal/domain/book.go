// Package domain contains the core types of the bookshelf catalog.
package domain

import (
	"maps"
	"slices"
	"strconv"
)

// Book is a catalog entry keyed by ISBN.
// Reviews map a username to that user's single review text.
type Book struct {
	ISBN    string            `json:"isbn"`
	Title   string            `json:"title"`
	Author  string            `json:"author"`
	Reviews map[string]string `json:"reviews"`
}

// Clone returns a deep copy so callers can't mutate store-owned maps.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	c.Reviews = maps.Clone(b.Reviews)
	if c.Reviews == nil {
		c.Reviews = map[string]string{}
	}
	return &c
}

// HasReviewBy reports whether username has a review on this book.
func (b *Book) HasReviewBy(username string) bool {
	_, ok := b.Reviews[username]
	return ok
}

// CompareISBN orders ISBNs naturally: numeric ISBNs by value, then lexically.
// The seed catalog uses "1".."10", which a plain string sort would scramble.
func CompareISBN(a, b string) int {
	ai, aErr := strconv.ParseUint(a, 10, 64)
	bi, bErr := strconv.ParseUint(b, 10, 64)

	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortBooks sorts books in place by natural ISBN order.
func SortBooks(books []*Book) {
	slices.SortFunc(books, func(a, b *Book) int {
		return CompareISBN(a.ISBN, b.ISBN)
	})
}
