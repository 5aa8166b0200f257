package search

import "github.com/listenupapp/bookshelf-server/internal/domain"

// BookDocument is the indexed form of a catalog entry. Reviews are not indexed.
type BookDocument struct {
	ISBN   string
	Title  string
	Author string
}

// NewBookDocument builds the document for b.
func NewBookDocument(b *domain.Book) *BookDocument {
	return &BookDocument{ISBN: b.ISBN, Title: b.Title, Author: b.Author}
}

// ToMap returns the field map bleve indexes, keyed to match the mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		fieldISBN:   d.ISBN,
		fieldTitle:  d.Title,
		fieldAuthor: d.Author,
	}
}
