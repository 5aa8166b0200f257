package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
)

func TestAuthService_Register_Success(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp, err := ts.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "User registered successfully", resp.Message)

	user, err := ts.store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))
	assert.False(t, user.CreatedAt.IsZero())
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	_, err := ts.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "one"})
	require.NoError(t, err)

	_, err = ts.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "two"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
	assert.Equal(t, "Username already exists", err.Error())
}

func TestAuthService_Register_CaseSensitive(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	_, err := ts.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	_, err = ts.auth.Register(ctx, RegisterRequest{Username: "Alice", Password: "pw"})
	assert.NoError(t, err)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	ts := setupServices(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"no username", RegisterRequest{Password: "pw"}},
		{"blank username", RegisterRequest{Username: "   ", Password: "pw"}},
		{"no password", RegisterRequest{Username: "alice"}},
		{"nothing", RegisterRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.auth.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
			assert.Equal(t, "Username and password are required", err.Error())
		})
	}
}

func TestAuthService_Register_TooLong(t *testing.T) {
	ts := setupServices(t)

	_, err := ts.auth.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Password: strings.Repeat("x", 1025),
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "password")
}

func TestAuthService_Login_Success(t *testing.T) {
	ts := setupServices(t)

	resp := ts.registerAndLogin(t, "alice", "s3cret")
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int(time.Hour.Seconds()), resp.ExpiresIn)
	assert.True(t, strings.HasPrefix(resp.SessionID, "sess-"))

	principal, err := ts.auth.VerifyAccessToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, resp.SessionID, principal.SessionID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	_, err := ts.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "right"})
	require.NoError(t, err)

	_, wrongPassword := ts.auth.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
	_, unknownUser := ts.auth.Login(ctx, LoginRequest{Username: "mallory", Password: "right"})

	for _, err := range []error{wrongPassword, unknownUser} {
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
		assert.Equal(t, "Invalid credentials", err.Error())
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	ts := setupServices(t)

	_, err := ts.auth.Login(context.Background(), LoginRequest{Username: "alice"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "Username and password are required", err.Error())
}

func TestAuthService_VerifyAccessToken_Invalid(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	_, err := ts.auth.VerifyAccessToken(ctx, "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	_, err = ts.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAuthService_VerifyAccessToken_UnknownSession(t *testing.T) {
	ts := setupServices(t)

	// A well-formed token whose session was never recorded.
	issued, err := ts.tokens.GenerateAccessToken("alice", "sess-missing")
	require.NoError(t, err)

	_, err = ts.auth.VerifyAccessToken(context.Background(), issued.Token)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp := ts.registerAndLogin(t, "alice", "pw")

	require.NoError(t, ts.auth.Logout(ctx, resp.SessionID))

	_, err := ts.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	// Logging out twice is harmless.
	assert.NoError(t, ts.auth.Logout(ctx, resp.SessionID))
}

func TestAuthService_MultipleSessions(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	first := ts.registerAndLogin(t, "alice", "pw")
	second, err := ts.auth.Login(ctx, LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	require.NoError(t, ts.auth.Logout(ctx, first.SessionID))

	_, err = ts.auth.VerifyAccessToken(ctx, second.AccessToken)
	assert.NoError(t, err)
}
