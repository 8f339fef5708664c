package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/api/dto"
	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile and permissions",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns every account (admin only)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create user",
		Description:   "Creates a library account (admin only)",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "setUserPermissions",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{id}/permissions",
		Summary:     "Set permissions",
		Description: "Replaces a user's permission grants (admin only)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPermissions)
}

// === DTOs ===

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body dto.User
}

// UserListResponse lists accounts.
type UserListResponse struct {
	Users []dto.User `json:"users" doc:"Accounts ordered by email"`
}

// UserListOutput wraps the user list for Huma.
type UserListOutput struct {
	Body UserListResponse
}

// CreateUserRequest is the request body for account creation.
type CreateUserRequest struct {
	Email           string `json:"email" doc:"Email address"`
	Password        string `json:"password" doc:"Initial password (8-1024 chars)"`
	FirstName       string `json:"first_name" doc:"First name"`
	LastName        string `json:"last_name" doc:"Last name"`
	CanMarkReturned bool   `json:"can_mark_returned,omitempty" doc:"Grant loan management"`
}

// CreateUserInput wraps the create request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// PermissionsRequest is the request body for replacing permissions.
type PermissionsRequest struct {
	CanMarkReturned bool `json:"can_mark_returned,omitempty" doc:"See all loans, renew them and add copies"`
}

// SetPermissionsInput wraps the permissions request for Huma.
type SetPermissionsInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body PermissionsRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := s.services.User.Me(ctx, currentUser(ctx))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: dto.UserFrom(user)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*UserListOutput, error) {
	users, err := s.services.User.ListUsers(ctx, currentUser(ctx))
	if err != nil {
		return nil, err
	}
	return &UserListOutput{Body: UserListResponse{Users: dto.Map(users, dto.UserFrom)}}, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.User.CreateUser(ctx, currentUser(ctx), service.CreateUserRequest{
		Email:           input.Body.Email,
		Password:        input.Body.Password,
		FirstName:       input.Body.FirstName,
		LastName:        input.Body.LastName,
		CanMarkReturned: input.Body.CanMarkReturned,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: dto.UserFrom(user)}, nil
}

func (s *Server) handleSetPermissions(ctx context.Context, input *SetPermissionsInput) (*UserOutput, error) {
	user, err := s.services.User.SetPermissions(ctx, currentUser(ctx), input.ID, domain.UserPermissions{
		CanMarkReturned: input.Body.CanMarkReturned,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: dto.UserFrom(user)}, nil
}
