package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_CloneIsDeep(t *testing.T) {
	orig := &Book{
		ISBN:    "1",
		Title:   "Things Fall Apart",
		Author:  "Chinua Achebe",
		Reviews: map[string]string{"alice": "great"},
	}

	c := orig.Clone()
	c.Reviews["bob"] = "meh"
	c.Title = "changed"

	assert.Len(t, orig.Reviews, 1)
	assert.Equal(t, "Things Fall Apart", orig.Title)
}

func TestBook_CloneNilReviews(t *testing.T) {
	c := (&Book{ISBN: "2"}).Clone()
	require.NotNil(t, c.Reviews)
	assert.Empty(t, c.Reviews)

	var nilBook *Book
	assert.Nil(t, nilBook.Clone())
}

func TestBook_HasReviewBy(t *testing.T) {
	b := &Book{Reviews: map[string]string{"alice": "ok"}}
	assert.True(t, b.HasReviewBy("alice"))
	assert.False(t, b.HasReviewBy("bob"))
}

func TestCompareISBN(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "2", -1},
		{"2", "10", -1},
		{"10", "9", 1},
		{"7", "7", 0},
		{"10", "978-0", -1},
		{"978-0", "10", 1},
		{"abc", "abd", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareISBN(tt.a, tt.b))
		})
	}
}

func TestSortBooks(t *testing.T) {
	books := []*Book{{ISBN: "10"}, {ISBN: "2"}, {ISBN: "1"}, {ISBN: "x"}}
	SortBooks(books)

	got := make([]string, 0, len(books))
	for _, b := range books {
		got = append(got, b.ISBN)
	}
	assert.Equal(t, []string{"1", "2", "10", "x"}, got)
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Minute)))
	assert.True(t, s.IsExpired(now.Add(time.Hour)))
}
