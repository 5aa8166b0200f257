package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, s.securedOperation(huma.Operation{
		OperationID: "putReview",
		Method:      http.MethodPut,
		Path:        "/customer/auth/review/{isbn}",
		Summary:     "Add or modify a review",
		Description: "Creates or replaces the caller's review of the book",
		Tags:        []string{"Reviews"},
	}), s.handlePutReview)

	huma.Register(s.api, s.securedOperation(huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/customer/auth/review/{isbn}",
		Summary:     "Delete a review",
		Description: "Removes the caller's review of the book. Other users' reviews are never touched.",
		Tags:        []string{"Reviews"},
	}), s.handleDeleteReview)
}

// === DTOs ===

// PutReviewInput contains the review to store.
type PutReviewInput struct {
	ISBN   string `path:"isbn" doc:"Book ISBN"`
	Review string `query:"review" doc:"Review text"`
}

// ReviewResponse describes a stored review.
type ReviewResponse struct {
	Message  string `json:"message" doc:"Result message"`
	ISBN     string `json:"isbn" doc:"Book ISBN"`
	Username string `json:"username" doc:"Review author"`
	Review   string `json:"review" doc:"Review text"`
	Created  bool   `json:"created" doc:"True when this was the caller's first review of the book"`
}

// PutReviewOutput wraps the put review response.
type PutReviewOutput struct {
	Body ReviewResponse
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

// MessageOutput wraps a message response.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handlePutReview(ctx context.Context, input *PutReviewInput) (*PutReviewOutput, error) {
	username, err := GetUsername(ctx)
	if err != nil {
		return nil, s.toAPIError(err)
	}

	result, err := s.services.Review.PutReview(ctx, username, pathValue(ctx, input.ISBN), input.Review)
	if err != nil {
		return nil, s.toAPIError(err)
	}

	return &PutReviewOutput{Body: ReviewResponse{
		Message:  result.Message,
		ISBN:     result.ISBN,
		Username: result.Username,
		Review:   result.Review,
		Created:  result.Created,
	}}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ISBNInput) (*MessageOutput, error) {
	username, err := GetUsername(ctx)
	if err != nil {
		return nil, s.toAPIError(err)
	}

	if err := s.services.Review.DeleteReview(ctx, username, pathValue(ctx, input.ISBN)); err != nil {
		return nil, s.toAPIError(err)
	}

	return &MessageOutput{Body: MessageResponse{Message: "Review deleted successfully"}}, nil
}
