package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/locallibrary/catalog-server/internal/auth"
	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// AuthService handles first-run setup, login, token refresh and token verification.
// Session bookkeeping is delegated to SessionService.
type AuthService struct {
	store          *sqlite.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	logger         *slog.Logger
	now            Clock
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *sqlite.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		logger:         logger,
		now:            systemClock,
	}
}

// SetupRequest contains the initial root user creation data.
type SetupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// IsSetupRequired reports whether no root user exists yet.
func (s *AuthService) IsSetupRequired(ctx context.Context) (bool, error) {
	hasRoot, err := s.store.HasRootUser(ctx)
	if err != nil {
		return false, fmt.Errorf("check setup status: %w", err)
	}
	return !hasRoot, nil
}

// Setup creates the root user. It only works once, before any root user exists.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest, client ClientInfo) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	required, err := s.IsSetupRequired(ctx)
	if err != nil {
		return nil, err
	}
	if !required {
		return nil, domainerrors.AlreadyConfigured("server is already configured")
	}

	user, err := newUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	user.IsRoot = true

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	resp, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("server setup complete", "user_id", user.ID, "email", user.Email)
	return resp, nil
}

// Login checks credentials and opens a session.
// Unknown emails and wrong passwords get the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("failed login", "user_id", user.ID, "ip", client.IPAddress)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	resp, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "session_id", resp.SessionID)
	return resp, nil
}

// RefreshTokens exchanges a refresh token for a new token pair.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, domainerrors.FieldValidation("refresh_token", "is required")
	}

	sessionResp, userID, err := s.sessionService.RefreshSession(ctx, refreshToken, client)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		// The account is gone; so is its session.
		_ = s.sessionService.DeleteSession(ctx, sessionResp.SessionID)
		return nil, domainerrors.Unauthorized("user not found").WithCause(err)
	}

	if err := s.sessionService.IssueAccessToken(user, sessionResp); err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Logout ends the caller's current session, or all of their sessions.
func (s *AuthService) Logout(ctx context.Context, actor *domain.User, sessionID string, allDevices bool) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if allDevices {
		_, err := s.sessionService.DeleteUserSessions(ctx, actor.ID)
		return err
	}
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken validates a token and returns its user and claims.
// A token whose session was logged out is rejected even before it expires.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	if !s.sessionService.IsActive(ctx, claims.SessionID) {
		return nil, nil, domainerrors.Unauthorized("session has ended")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("user not found")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	return user, claims, nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User, client ClientInfo) (*AuthResponse, error) {
	now := s.now()
	if err := s.store.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// newUser builds an account with a hashed password and no permissions.
func newUser(email, password, firstName, lastName string) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	user.ID = userID
	user.InitTimestamps()
	return user, nil
}
