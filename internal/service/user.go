package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// UserService manages accounts and their permissions. Everything but Me is admin-only.
type UserService struct {
	store  *sqlite.Store
	logger *slog.Logger
	now    Clock
}

// NewUserService creates a new user service.
func NewUserService(store *sqlite.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger, now: systemClock}
}

// CreateUserRequest describes a new account created by an admin.
type CreateUserRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=1024"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	CanMarkReturned bool   `json:"can_mark_returned"`
}

// Me returns the caller.
func (s *UserService) Me(_ context.Context, actor *domain.User) (*domain.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// CreateUser adds an account. Only the root user may do this.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, req CreateUserRequest) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := newUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	user.Permissions.CanMarkReturned = req.CanMarkReturned

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "created_by", actor.ID,
		"can_mark_returned", req.CanMarkReturned)
	return user, nil
}

// SetPermissions replaces a user's permission grants.
func (s *UserService) SetPermissions(ctx context.Context, actor *domain.User, userID string, perms domain.UserPermissions) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	if err := s.store.SetPermissions(ctx, userID, perms, s.now()); err != nil {
		return nil, storeError(err, "user")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	s.logger.Info("permissions updated", "user_id", userID, "updated_by", actor.ID,
		"can_mark_returned", perms.CanMarkReturned)
	return user, nil
}
