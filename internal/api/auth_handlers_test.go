package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "alice", "password": testPassword})

	assert.Equal(t, http.StatusCreated, resp.Code)

	var env testEnvelope[RegisterResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "alice", env.Data.Username)
	assert.Equal(t, "User registered successfully", env.Data.Message)
}

func TestRegister_Duplicate(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "alice", "password": testPassword})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/register", map[string]any{"username": "alice", "password": "another one"})

	assert.Equal(t, http.StatusConflict, resp.Code)
	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "ALREADY_EXISTS", env.Code)
	assert.Equal(t, "Username already exists", env.Message)
}

func TestRegister_UsernamesAreCaseSensitive(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "alice", "password": testPassword})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/register", map[string]any{"username": "Alice", "password": testPassword})
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing username", body: map[string]any{"password": testPassword}},
		{name: "missing password", body: map[string]any{"username": "alice"}},
		{name: "blank username", body: map[string]any{"username": "   ", "password": testPassword}},
		{name: "empty body", body: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			env := decodeError(t, resp.Body.Bytes())
			assert.Equal(t, "VALIDATION", env.Code)
			assert.Equal(t, "Username and password are required", env.Message)
		})
	}
}

func TestRegister_MalformedBodyIsBadRequest(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": 42, "password": testPassword})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "alice", "password": testPassword})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/customer/login", map[string]any{"username": "alice", "password": testPassword})

	assert.Equal(t, http.StatusOK, resp.Code)

	var env testEnvelope[LoginResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Login successful", env.Data.Message)
	assert.Equal(t, "alice", env.Data.Username)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.NotEmpty(t, env.Data.Token)
	assert.NotEmpty(t, env.Data.SessionID)
	assert.Equal(t, 3600, env.Data.ExpiresIn)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/register", map[string]any{"username": "alice", "password": testPassword})
	require.Equal(t, http.StatusCreated, resp.Code)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "wrong password", body: map[string]any{"username": "alice", "password": "wrong"}},
		{name: "unknown user", body: map[string]any{"username": "mallory", "password": testPassword}},
		{name: "wrong case username", body: map[string]any{"username": "ALICE", "password": testPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/customer/login", tt.body)

			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			env := decodeError(t, resp.Body.Bytes())
			assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
			assert.Equal(t, "Invalid credentials", env.Message)
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/customer/login", map[string]any{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "Username and password are required", env.Message)
}

func TestMe_ReturnsCaller(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.login(t, "alice")

	resp := ts.api.Get("/customer/auth/me", authHeader)

	assert.Equal(t, http.StatusOK, resp.Code)

	var env testEnvelope[MeResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "alice", env.Data.Username)
	assert.NotEmpty(t, env.Data.SessionID)
}

func TestSecuredRoutes_RejectBadTokens(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		header []any
	}{
		{name: "no header", header: nil},
		{name: "wrong scheme", header: []any{"Authorization: Basic YWxpY2U6cHc="}},
		{name: "empty bearer", header: []any{"Authorization: Bearer "}},
		{name: "garbage token", header: []any{"Authorization: Bearer v4.local.garbage"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/customer/auth/me", tt.header...)

			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			decodeError(t, resp.Body.Bytes())
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.login(t, "alice")

	resp := ts.api.Post("/customer/auth/logout", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/customer/auth/me", authHeader)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Put("/customer/auth/review/1?review=hello", authHeader)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_OtherSessionsSurvive(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.login(t, "alice")

	resp := ts.api.Post("/customer/login", map[string]any{"username": "alice", "password": testPassword})
	require.Equal(t, http.StatusOK, resp.Code)
	var env testEnvelope[LoginResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	second := "Authorization: Bearer " + env.Data.Token

	resp = ts.api.Post("/customer/auth/logout", first)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/customer/auth/me", second)
	assert.Equal(t, http.StatusOK, resp.Code)
}
