package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	usernameKey  ctxKey = "username"
	sessionIDKey ctxKey = "sessionID"
)

// GetUsername returns the authenticated username from context.
// Returns a 401 error if the request is not authenticated.
func GetUsername(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok || username == "" {
		return "", domainerrors.Unauthorized("Authentication required")
	}
	return username, nil
}

// getSessionID returns the session ID of the authenticated caller, or "".
func getSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)
	return sessionID
}

// requireAuth is a huma operation middleware that accepts only requests
// with a valid bearer token backed by a live session.
func (s *Server) requireAuth(ctx huma.Context, next func(huma.Context)) {
	token, ok := bearerToken(ctx.Header("Authorization"))
	if !ok {
		s.writeErr(ctx, domainerrors.Unauthorized("Missing or invalid authorization header"))
		return
	}

	principal, err := s.services.Auth.VerifyAccessToken(ctx.Context(), token)
	if err != nil {
		s.writeErr(ctx, err)
		return
	}

	ctx = huma.WithValue(ctx, usernameKey, principal.Username)
	ctx = huma.WithValue(ctx, sessionIDKey, principal.SessionID)
	next(ctx)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeErr writes err from inside an operation middleware.
func (s *Server) writeErr(ctx huma.Context, err error) {
	apiErr := s.toAPIError(err).(*APIError)
	_ = huma.WriteErr(s.api, ctx, apiErr.GetStatus(), apiErr.Message, err)
}

// securedOperation marks op as requiring a bearer token and attaches the gate.
func (s *Server) securedOperation(op huma.Operation) huma.Operation {
	op.Security = []map[string][]string{{"bearer": {}}}
	op.Middlewares = append(op.Middlewares, s.requireAuth)
	return op
}
