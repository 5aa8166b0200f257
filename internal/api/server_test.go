package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/catalog"
	"github.com/listenupapp/bookshelf-server/internal/search"
	"github.com/listenupapp/bookshelf-server/internal/service"
	"github.com/listenupapp/bookshelf-server/internal/store/memory"
)

const testPassword = "correct horse battery staple"

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *memory.Store
}

// testEnvelope decodes the success envelope around T.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope decodes the error envelope.
type testErrorEnvelope struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	s := memory.New()
	require.NoError(t, catalog.Apply(ctx, s, catalog.Seed()))

	index, err := search.NewSearchIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.NoError(t, index.Rebuild(books))

	key, err := auth.GenerateKey()
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	sessions := service.NewSessionService(s, tokens, logger)

	server := NewServer(&Services{
		Auth:   service.NewAuthService(s, tokens, sessions, nil, logger),
		Book:   service.NewBookService(s, index, logger),
		Review: service.NewReviewService(s, 0, logger),
		Store:  s,
		Search: index,
	}, opts, logger)
	t.Cleanup(server.Close)

	return &testServer{
		Server: server,
		api:    humatest.Wrap(t, server.API()),
		store:  s,
	}
}

// login registers username and returns a bearer authorization header.
func (ts *testServer) login(t *testing.T, username string) string {
	t.Helper()

	resp := ts.api.Post("/register", map[string]any{"username": username, "password": testPassword})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/customer/login", map[string]any{"username": username, "password": testPassword})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var env testEnvelope[LoginResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.Token)

	return "Authorization: Bearer " + env.Data.Token
}

func decodeError(t *testing.T, body []byte) testErrorEnvelope {
	t.Helper()

	var env testErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.False(t, env.Success)
	return env
}

func TestServer_UnknownRouteUsesEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/no/such/route")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "Route not found", env.Message)
}

func TestServer_MethodNotAllowedUsesEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Patch("/customer/login", map[string]any{})

	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	decodeError(t, resp.Body.Bytes())
}

func TestServer_OpenAPIDocumentsSecurity(t *testing.T) {
	ts := setupTestServer(t)

	oapi := ts.API().OpenAPI()
	require.Contains(t, oapi.Components.SecuritySchemes, "bearer")

	put := oapi.Paths["/customer/auth/review/{isbn}"].Put
	require.NotNil(t, put)
	assert.Equal(t, []map[string][]string{{"bearer": {}}}, put.Security)

	list := oapi.Paths["/"].Get
	require.NotNil(t, list)
	assert.Empty(t, list.Security)
}
