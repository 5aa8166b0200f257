package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/register",
		Summary:       "Register new user",
		Description:   "Creates a new user account. Usernames are case-sensitive and unique.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimitAuth},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/customer/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns an access token valid for one hour",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimitAuth},
	}, s.handleLogin)

	huma.Register(s.api, s.securedOperation(huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/customer/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the caller's session; its token stops working immediately",
		Tags:        []string{"Authentication"},
	}), s.handleLogout)

	huma.Register(s.api, s.securedOperation(huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/customer/auth/me",
		Summary:     "Current user",
		Description: "Returns the username behind the access token",
		Tags:        []string{"Authentication"},
	}), s.handleMe)
}

// === DTOs ===

// Fields are optional in the schema so missing values reach the service,
// which reports them with a single message.

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Username string `json:"username,omitempty" maxLength:"128" doc:"Username"`
	Password string `json:"password,omitempty" maxLength:"1024" doc:"Password"`
}

// CredentialsInput wraps the credentials for Huma.
type CredentialsInput struct {
	Body CredentialsRequest
}

// RegisterResponse acknowledges a new account.
type RegisterResponse struct {
	Message  string `json:"message" doc:"Result message"`
	Username string `json:"username" doc:"Registered username"`
}

// RegisterOutput wraps the registration acknowledgement.
type RegisterOutput struct {
	Body RegisterResponse
}

// LoginResponse contains the access token for a new session.
type LoginResponse struct {
	Message   string    `json:"message" doc:"Result message"`
	Username  string    `json:"username" doc:"Authenticated username"`
	Token     string    `json:"token" doc:"PASETO access token"`
	TokenType string    `json:"token_type" doc:"Always Bearer"`
	ExpiresIn int       `json:"expires_in" doc:"Seconds until the token expires"`
	ExpiresAt time.Time `json:"expires_at" doc:"Token expiry time"`
	SessionID string    `json:"session_id" doc:"Server-side session ID"`
}

// LoginOutput wraps the login response.
type LoginOutput struct {
	Body LoginResponse
}

// MeResponse identifies the authenticated caller.
type MeResponse struct {
	Username  string `json:"username" doc:"Authenticated username"`
	SessionID string `json:"session_id" doc:"Current session ID"`
}

// MeOutput wraps the current user response.
type MeOutput struct {
	Body MeResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *CredentialsInput) (*RegisterOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &RegisterOutput{Body: RegisterResponse{Message: resp.Message, Username: resp.Username}}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *CredentialsInput) (*LoginOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, s.toAPIError(err)
	}

	return &LoginOutput{Body: LoginResponse{
		Message:   resp.Message,
		Username:  resp.Username,
		Token:     resp.AccessToken,
		TokenType: resp.TokenType,
		ExpiresIn: resp.ExpiresIn,
		ExpiresAt: resp.ExpiresAt,
		SessionID: resp.SessionID,
	}}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	if _, err := GetUsername(ctx); err != nil {
		return nil, s.toAPIError(err)
	}

	if err := s.services.Auth.Logout(ctx, getSessionID(ctx)); err != nil {
		return nil, s.toAPIError(err)
	}
	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

func (s *Server) handleMe(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	username, err := GetUsername(ctx)
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &MeOutput{Body: MeResponse{Username: username, SessionID: getSessionID(ctx)}}, nil
}
