package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/id"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// SessionService handles login sessions and their lifecycle.
// A session is the server-side half of an access token: deleting it
// revokes the token even before it expires.
type SessionService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
	now          func() time.Time
}

// NewSessionService creates a new session management service.
func NewSessionService(
	store store.Store,
	tokenService *auth.TokenService,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
		now:          time.Now,
	}
}

// SessionResponse contains the access token and session metadata.
type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"` // Seconds until access token expires
	ExpiresAt   time.Time `json:"expires_at"`
	SessionID   string    `json:"session_id"`
}

// CreateSession issues an access token for username and records the session.
func (s *SessionService) CreateSession(ctx context.Context, username string) (*SessionResponse, error) {
	sessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	issued, err := s.tokenService.GenerateAccessToken(username, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	session := &domain.Session{
		ID:        sessionID,
		Username:  username,
		TokenID:   issued.TokenID,
		CreatedAt: s.now(),
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &SessionResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenService.AccessTokenDuration().Seconds()),
		ExpiresAt:   issued.ExpiresAt,
		SessionID:   sessionID,
	}, nil
}

// ValidateSession checks that the session named by claims is still live and
// was issued for the same user and token.
func (s *SessionService) ValidateSession(ctx context.Context, claims *auth.AccessClaims) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, claims.SessionID)
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return nil, domainerrors.Unauthorized("session not found").WithCause(err)
	case errors.Is(err, store.ErrSessionExpired):
		return nil, domainerrors.TokenExpired("session expired").WithCause(err)
	case err != nil:
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Username != claims.Username || session.TokenID != claims.TokenID {
		return nil, domainerrors.Unauthorized("session does not match token")
	}

	return session, nil
}

// DeleteSession ends a session (logout). Deleting a missing session is not an error.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Session deleted", "session_id", sessionID)
	}

	return nil
}

// DeleteExpiredSessions removes all expired sessions.
// This should be run periodically as a cleanup job.
func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int, error) {
	count, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	if s.logger != nil && count > 0 {
		s.logger.Info("Deleted expired sessions", "count", count)
	}

	return count, nil
}

// RunCleanup deletes expired sessions every interval until ctx is cancelled.
func (s *SessionService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.DeleteExpiredSessions(ctx); err != nil && s.logger != nil {
				s.logger.Warn("Session cleanup failed", "error", err)
			}
		}
	}
}
