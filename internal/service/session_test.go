package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

func TestSessionService_CreateSession(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp, err := ts.sessions.CreateSession(ctx, "alice")
	require.NoError(t, err)

	session, err := ts.store.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.WithinDuration(t, resp.ExpiresAt, session.ExpiresAt, time.Second)

	claims, err := ts.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.TokenID, claims.TokenID)
}

func TestSessionService_ValidateSession_Mismatch(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp, err := ts.sessions.CreateSession(ctx, "alice")
	require.NoError(t, err)
	claims, err := ts.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)

	_, err = ts.sessions.ValidateSession(ctx, claims)
	require.NoError(t, err)

	forged := *claims
	forged.Username = "bob"
	_, err = ts.sessions.ValidateSession(ctx, &forged)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	replaced := *claims
	replaced.TokenID = "other"
	_, err = ts.sessions.ValidateSession(ctx, &replaced)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestSessionService_ValidateSession_Expired(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, ts.store.CreateSession(ctx, &domain.Session{
		ID:        "sess-old",
		Username:  "alice",
		TokenID:   "tok",
		CreatedAt: past.Add(-time.Hour),
		ExpiresAt: past,
	}))

	_, err := ts.sessions.ValidateSession(ctx, &auth.AccessClaims{
		Username:  "alice",
		SessionID: "sess-old",
		TokenID:   "tok",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrTokenExpired))
}

func TestSessionService_DeleteExpiredSessions(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	live, err := ts.sessions.CreateSession(ctx, "alice")
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	for _, id := range []string{"sess-a", "sess-b"} {
		require.NoError(t, ts.store.CreateSession(ctx, &domain.Session{
			ID: id, Username: "bob", CreatedAt: past, ExpiresAt: past,
		}))
	}

	count, err := ts.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = ts.store.GetSession(ctx, live.SessionID)
	assert.NoError(t, err)
}

func TestSessionService_RunCleanup(t *testing.T) {
	ts := setupServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, ts.store.CreateSession(ctx, &domain.Session{
		ID: "sess-old", Username: "bob", CreatedAt: past, ExpiresAt: past,
	}))

	done := make(chan struct{})
	go func() {
		ts.sessions.RunCleanup(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := ts.store.GetSession(context.Background(), "sess-old")
		return errors.Is(err, store.ErrSessionNotFound)
	}, time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop")
	}
}
