package dto

import (
	"time"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/service"
)

// User is the public view of an account. The password hash never leaves the server.
type User struct {
	ID              string     `json:"id" doc:"User ID"`
	Email           string     `json:"email" doc:"Email address"`
	FirstName       string     `json:"first_name" doc:"First name"`
	LastName        string     `json:"last_name" doc:"Last name"`
	IsRoot          bool       `json:"is_root" doc:"Whether the user administers the server"`
	CanMarkReturned bool       `json:"can_mark_returned" doc:"Whether the user manages loans"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty" doc:"Last login time"`
	CreatedAt       time.Time  `json:"created_at" doc:"Creation time"`
}

// UserFrom maps a domain user.
func UserFrom(u *domain.User) User {
	return User{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsRoot:          u.IsRoot,
		CanMarkReturned: u.HasPermission(domain.PermCanMarkReturned),
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
}

// AuthResponse is the response for successful authentication.
type AuthResponse struct {
	AccessToken  string `json:"access_token" doc:"PASETO access token"`
	RefreshToken string `json:"refresh_token" doc:"Refresh token for obtaining new access tokens"`
	TokenType    string `json:"token_type" doc:"Always Bearer"`
	ExpiresIn    int    `json:"expires_in" doc:"Access token expiry in seconds"`
	SessionID    string `json:"session_id" doc:"Session identifier"`
	User         User   `json:"user" doc:"Authenticated user details"`
}

// AuthResponseFrom maps a service auth response.
func AuthResponseFrom(r *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		ExpiresIn:    r.ExpiresIn,
		SessionID:    r.SessionID,
		User:         UserFrom(r.User),
	}
}

// AuthOutput wraps the auth response for huma.
type AuthOutput struct {
	Body AuthResponse
}
