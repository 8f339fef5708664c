package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/locallibrary/catalog-server/internal/auth"
	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/store/kv"
)

// SessionService handles refresh-token sessions.
// Each login creates one; refreshing rotates its token.
type SessionService struct {
	sessions     *kv.Sessions
	tokenService *auth.TokenService
	logger       *slog.Logger
	now          Clock
}

// NewSessionService creates a new session management service.
func NewSessionService(sessions *kv.Sessions, tokenService *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions:     sessions,
		tokenService: tokenService,
		logger:       logger,
		now:          systemClock,
	}
}

// SessionResponse contains session tokens and metadata.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // Seconds until access token expires
	SessionID    string `json:"session_id"`
}

// ClientInfo identifies where a login came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// CreateSession stores a new session for user and issues its tokens.
func (s *SessionService) CreateSession(ctx context.Context, user *domain.User, client ClientInfo) (*SessionResponse, error) {
	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokenService.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        client.IPAddress,
		UserAgent:        client.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return s.issue(user, session, refreshToken)
}

// RefreshSession rotates the refresh token of the session it belongs to.
// The old token stops working.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string, client ClientInfo) (*SessionResponse, string, error) {
	session, err := s.sessions.GetByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		return nil, "", domainerrors.Unauthorized("invalid or expired refresh token").WithCause(err)
	}
	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, "", domainerrors.Unauthorized("invalid or expired refresh token")
	}

	newRefreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}

	session.RefreshTokenHash = auth.HashRefreshToken(newRefreshToken)
	session.LastSeenAt = s.now()
	if client.IPAddress != "" {
		session.IPAddress = client.IPAddress
	}
	if client.UserAgent != "" {
		session.UserAgent = client.UserAgent
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, "", fmt.Errorf("update session: %w", err)
	}

	return &SessionResponse{
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenService.AccessTokenDuration().Seconds()),
		SessionID:    session.ID,
	}, session.UserID, nil
}

// IssueAccessToken fills in the access token of a refreshed session.
func (s *SessionService) IssueAccessToken(user *domain.User, resp *SessionResponse) error {
	token, err := s.tokenService.GenerateAccessToken(user, resp.SessionID)
	if err != nil {
		return fmt.Errorf("generate access token: %w", err)
	}
	resp.AccessToken = token
	return nil
}

// IsActive reports whether sessionID still exists and has not expired.
func (s *SessionService) IsActive(ctx context.Context, sessionID string) bool {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return false
	}
	return !s.now().After(session.ExpiresAt)
}

// DeleteSession ends a session (logout).
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session deleted", "session_id", sessionID)
	return nil
}

// DeleteUserSessions ends every session of a user.
func (s *SessionService) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	n, err := s.sessions.DeleteForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	s.logger.Info("user sessions deleted", "user_id", userID, "count", n)
	return n, nil
}

func (s *SessionService) issue(user *domain.User, session *domain.Session, refreshToken string) (*SessionResponse, error) {
	resp := &SessionResponse{
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenService.AccessTokenDuration().Seconds()),
		SessionID:    session.ID,
	}
	if err := s.IssueAccessToken(user, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
