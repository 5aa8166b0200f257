package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/search"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "List books",
		Description: "Returns every book in the catalog ordered by ISBN",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookByISBN",
		Method:      http.MethodGet,
		Path:        "/isbn/{isbn}",
		Summary:     "Get book by ISBN",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBooksByAuthor",
		Method:      http.MethodGet,
		Path:        "/author/{author}",
		Summary:     "Get books by author",
		Description: "Exact author match, ignoring case",
		Tags:        []string{"Books"},
	}, s.handleBooksByAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBooksByTitle",
		Method:      http.MethodGet,
		Path:        "/title/{title}",
		Summary:     "Get books by title",
		Description: "Books whose title contains the given text, ignoring case",
		Tags:        []string{"Books"},
	}, s.handleBooksByTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookReviews",
		Method:      http.MethodGet,
		Path:        "/review/{isbn}",
		Summary:     "Get book reviews",
		Description: "Returns the book's reviews keyed by username",
		Tags:        []string{"Reviews"},
	}, s.handleGetReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search books",
		Description: "Full-text search over titles and authors",
		Tags:        []string{"Books"},
	}, s.handleSearch)
}

// === DTOs ===

// BookResponse is a catalog entry in API responses.
type BookResponse struct {
	ISBN    string            `json:"isbn" doc:"Book ISBN"`
	Title   string            `json:"title" doc:"Book title"`
	Author  string            `json:"author" doc:"Book author"`
	Reviews map[string]string `json:"reviews" doc:"Reviews keyed by username"`
}

// ISBNInput identifies a book by ISBN.
type ISBNInput struct {
	ISBN string `path:"isbn" doc:"Book ISBN"`
}

// AuthorInput names an author.
type AuthorInput struct {
	Author string `path:"author" doc:"Author name"`
}

// TitleInput contains part of a title.
type TitleInput struct {
	Title string `path:"title" doc:"Title text to look for"`
}

// SearchInput contains search parameters.
type SearchInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
}

// BookOutput wraps a single book.
type BookOutput struct {
	Body BookResponse
}

// BookListOutput wraps a list of books.
type BookListOutput struct {
	Body []BookResponse
}

// ReviewsOutput wraps a book's reviews.
type ReviewsOutput struct {
	Body map[string]string
}

// SearchOutput wraps search results.
type SearchOutput struct {
	Body *search.Result
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	books, err := s.services.Book.ListBooks(ctx)
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *ISBNInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, pathValue(ctx, input.ISBN))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleBooksByAuthor(ctx context.Context, input *AuthorInput) (*BookListOutput, error) {
	books, err := s.services.Book.BooksByAuthor(ctx, pathValue(ctx, input.Author))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleBooksByTitle(ctx context.Context, input *TitleInput) (*BookListOutput, error) {
	books, err := s.services.Book.BooksByTitle(ctx, pathValue(ctx, input.Title))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleGetReviews(ctx context.Context, input *ISBNInput) (*ReviewsOutput, error) {
	reviews, err := s.services.Book.GetReviews(ctx, pathValue(ctx, input.ISBN))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &ReviewsOutput{Body: reviews}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Book.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &SearchOutput{Body: result}, nil
}

// === Helpers ===

func toBookResponse(b *domain.Book) BookResponse {
	reviews := b.Reviews
	if reviews == nil {
		reviews = map[string]string{}
	}
	return BookResponse{
		ISBN:    b.ISBN,
		Title:   b.Title,
		Author:  b.Author,
		Reviews: reviews,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}
