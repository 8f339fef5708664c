package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/api/dto"
	"github.com/locallibrary/catalog-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSetupStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/setup",
		Summary:     "Setup status",
		Description: "Reports whether the root account still needs to be created",
		Tags:        []string{"Authentication"},
	}, s.handleSetupStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "setup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/setup",
		Summary:     "Initial server setup",
		Description: "Creates the root user. Can only be called once.",
		Tags:        []string{"Authentication"},
	}, s.handleSetup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens. The old refresh token stops working.",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Ends the current session, or every session of the user",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)
}

// === DTOs ===

func clientInfo(forwardedFor, realIP, userAgent string) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: extractIP(forwardedFor, realIP),
		UserAgent: userAgent,
	}
}

// SetupStatusResponse reports whether setup is pending.
type SetupStatusResponse struct {
	SetupRequired bool `json:"setup_required" doc:"True until the root user exists"`
}

// SetupStatusOutput wraps the setup status for Huma.
type SetupStatusOutput struct {
	Body SetupStatusResponse
}

// SetupRequest is the request body for initial server setup.
type SetupRequest struct {
	Email     string `json:"email" doc:"Root email address"`
	Password  string `json:"password" doc:"Root password (8-1024 chars)"`
	FirstName string `json:"first_name" doc:"Root first name"`
	LastName  string `json:"last_name" doc:"Root last name"`
}

// SetupInput wraps the setup request for Huma.
type SetupInput struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
	Body          SetupRequest
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" doc:"User email"`
	Password string `json:"password" doc:"User password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
	Body          LoginRequest
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
	Body          RefreshRequest
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	AllDevices bool `json:"all_devices,omitempty" doc:"End every session of the user"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body *LogoutRequest `required:"false"`
}

// === Handlers ===

func (s *Server) handleSetupStatus(ctx context.Context, _ *struct{}) (*SetupStatusOutput, error) {
	required, err := s.services.Auth.IsSetupRequired(ctx)
	if err != nil {
		return nil, err
	}
	return &SetupStatusOutput{Body: SetupStatusResponse{SetupRequired: required}}, nil
}

func (s *Server) handleSetup(ctx context.Context, input *SetupInput) (*dto.AuthOutput, error) {
	resp, err := s.services.Auth.Setup(ctx, service.SetupRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
	}, clientInfo(input.XForwardedFor, input.XRealIP, input.UserAgent))
	if err != nil {
		return nil, err
	}
	return &dto.AuthOutput{Body: dto.AuthResponseFrom(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*dto.AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}, clientInfo(input.XForwardedFor, input.XRealIP, input.UserAgent))
	if err != nil {
		return nil, err
	}

	// A successful login clears the failure budget for this address.
	if ip := extractIP(input.XForwardedFor, input.XRealIP); ip != "" {
		s.authRateLimiter.Reset(ip)
	}
	return &dto.AuthOutput{Body: dto.AuthResponseFrom(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*dto.AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, input.Body.RefreshToken, clientInfo(input.XForwardedFor, input.XRealIP, input.UserAgent))
	if err != nil {
		return nil, err
	}
	return &dto.AuthOutput{Body: dto.AuthResponseFrom(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*dto.MessageOutput, error) {
	allDevices := input.Body != nil && input.Body.AllDevices
	if err := s.services.Auth.Logout(ctx, currentUser(ctx), currentSessionID(ctx), allDevices); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Logged out successfully"}}, nil
}
