// Package client is a typed HTTP client for the bookshelf API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/api"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/search"
)

// DefaultTimeout bounds each request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Client talks to a bookshelf server.
// Methods return *errors.Error for API failures so callers can use errors.Is
// with the domain sentinels.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent on authenticated calls.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token, e.g. after Login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// === Books ===

// ListBooks returns the whole catalog.
func (c *Client) ListBooks(ctx context.Context) ([]api.BookResponse, error) {
	var books []api.BookResponse
	err := c.do(ctx, http.MethodGet, "/", nil, nil, false, &books)
	return books, err
}

// GetBook returns the book with the given ISBN.
func (c *Client) GetBook(ctx context.Context, isbn string) (*api.BookResponse, error) {
	var book api.BookResponse
	if err := c.do(ctx, http.MethodGet, "/isbn/"+url.PathEscape(isbn), nil, nil, false, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// BooksByAuthor returns books whose author matches exactly, ignoring case.
func (c *Client) BooksByAuthor(ctx context.Context, author string) ([]api.BookResponse, error) {
	var books []api.BookResponse
	err := c.do(ctx, http.MethodGet, "/author/"+url.PathEscape(author), nil, nil, false, &books)
	return books, err
}

// BooksByTitle returns books whose title contains title, ignoring case.
func (c *Client) BooksByTitle(ctx context.Context, title string) ([]api.BookResponse, error) {
	var books []api.BookResponse
	err := c.do(ctx, http.MethodGet, "/title/"+url.PathEscape(title), nil, nil, false, &books)
	return books, err
}

// Search runs a full-text query. A non-positive limit uses the server default.
func (c *Client) Search(ctx context.Context, q string, limit int) (*search.Result, error) {
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result search.Result
	if err := c.do(ctx, http.MethodGet, "/search", query, nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// === Reviews ===

// Reviews returns a book's reviews keyed by username.
func (c *Client) Reviews(ctx context.Context, isbn string) (map[string]string, error) {
	reviews := map[string]string{}
	err := c.do(ctx, http.MethodGet, "/review/"+url.PathEscape(isbn), nil, nil, false, &reviews)
	return reviews, err
}

// PutReview adds or replaces the caller's review.
func (c *Client) PutReview(ctx context.Context, isbn, text string) (*api.ReviewResponse, error) {
	var resp api.ReviewResponse
	query := url.Values{"review": {text}}
	if err := c.do(ctx, http.MethodPut, "/customer/auth/review/"+url.PathEscape(isbn), query, nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteReview removes the caller's review.
func (c *Client) DeleteReview(ctx context.Context, isbn string) error {
	return c.do(ctx, http.MethodDelete, "/customer/auth/review/"+url.PathEscape(isbn), nil, nil, true, nil)
}

// === Auth ===

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	body := api.CredentialsRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/register", nil, body, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	body := api.CredentialsRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/customer/login", nil, body, false, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Logout revokes the current token's session and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/customer/auth/logout", nil, nil, true, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Me returns the user behind the current token.
func (c *Client) Me(ctx context.Context) (*api.MeResponse, error) {
	var resp api.MeResponse
	if err := c.do(ctx, http.MethodGet, "/customer/auth/me", nil, nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// === Transport ===

// envelope is the wire shape of every response, success or failure.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details any             `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, authenticated bool, out any) error {
	// path segments are already escaped by the callers
	target := c.baseURL.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		if c.token == "" {
			return domainerrors.Unauthorized("not logged in")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return statusError(resp.StatusCode, "", http.StatusText(resp.StatusCode), nil)
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return statusError(resp.StatusCode, env.Code, msg, env.Details)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// statusError rebuilds a domain error from an error envelope.
// Unknown codes fall back to the code implied by the status.
func statusError(status int, code, message string, details any) *domainerrors.Error {
	c := domainerrors.Code(code)
	if code == "" || c.HTTPStatus() != status {
		c = domainerrors.CodeForStatus(status)
	}
	err := domainerrors.New(c, message)
	if details != nil {
		err = err.WithDetails(details)
	}
	return err
}
