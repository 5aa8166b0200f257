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
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

const (
	msgCredentialsRequired = "Username and password are required"
	msgInvalidCredentials  = "Invalid credentials"
)

// AuthService handles registration, login and token verification.
// Session management is delegated to SessionService.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	validator      *validation.Validator
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	if validator == nil {
		validator = validation.New()
	}
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		validator:      validator,
		logger:         logger,
	}
}

// RegisterRequest contains the new account's credentials.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,max=128"`
	Password string `json:"password" validate:"required,max=1024"`
}

// RegisterResponse acknowledges a registration.
type RegisterResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the access token for a new session.
type LoginResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	SessionResponse
}

// Principal is the authenticated caller behind a verified access token.
type Principal struct {
	Username  string
	SessionID string
}

// Register creates a new user. Usernames are case-sensitive and unique.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, credentialsError(err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, domainerrors.Validationf("password must not exceed %d bytes", auth.MaxPasswordLength)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, domainerrors.AlreadyExists("Username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered", "username", user.Username)
	}

	return &RegisterResponse{
		Username: user.Username,
		Message:  "User registered successfully",
	}, nil
}

// Login checks credentials and opens a session.
// Unknown users and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, credentialsError(err)
	}

	user, err := s.store.GetUser(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.InvalidCredentials(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials(msgInvalidCredentials)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in",
			"username", user.Username,
			"session_id", sessionResp.SessionID,
		)
	}

	return &LoginResponse{
		Username:        user.Username,
		Message:         "Login successful",
		SessionResponse: *sessionResp,
	}, nil
}

// VerifyAccessToken validates a bearer token and its session.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing access token")
	}

	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("access token expired").WithCause(err)
		}
		return nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	session, err := s.sessionService.ValidateSession(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &Principal{Username: session.Username, SessionID: session.ID}, nil
}

// Logout ends the caller's session, revoking its token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// credentialsError reports missing fields with the register/login message
// and passes other validation failures through.
func credentialsError(err error) error {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		return err
	}

	fields, ok := domainErr.Details.(map[string]string)
	if !ok {
		return err
	}
	for _, msg := range fields {
		if msg == "is required" {
			return domainerrors.ValidationWithDetails(msgCredentialsRequired, fields)
		}
	}
	return err
}
