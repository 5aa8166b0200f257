package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/catalog"
	"github.com/listenupapp/bookshelf-server/internal/store/memory"
)

type testServices struct {
	store    *memory.Store
	tokens   *auth.TokenService
	sessions *SessionService
	auth     *AuthService
	books    *BookService
	reviews  *ReviewService
}

// setupServices wires every service over a seeded in-memory store.
func setupServices(t *testing.T) *testServices {
	t.Helper()

	s := memory.New()
	require.NoError(t, catalog.Apply(context.Background(), s, catalog.Seed()))

	key, err := auth.GenerateKey()
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	sessions := NewSessionService(s, tokens, nil)

	return &testServices{
		store:    s,
		tokens:   tokens,
		sessions: sessions,
		auth:     NewAuthService(s, tokens, sessions, nil, nil),
		books:    NewBookService(s, nil, nil),
		reviews:  NewReviewService(s, 0, nil),
	}
}

// registerAndLogin creates a user and returns its login response.
func (ts *testServices) registerAndLogin(t *testing.T, username, password string) *LoginResponse {
	t.Helper()

	ctx := context.Background()
	_, err := ts.auth.Register(ctx, RegisterRequest{Username: username, Password: password})
	require.NoError(t, err)

	resp, err := ts.auth.Login(ctx, LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	return resp
}
