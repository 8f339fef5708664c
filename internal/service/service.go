// Package service holds the catalog's business logic: loan renewal and loan
// listings, catalog maintenance, search, accounts and sessions.
//
// Services return *errors.Error values for anything a client can act on;
// the API layer maps their codes to HTTP statuses.
package service

import (
	"errors"
	"time"

	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/validation"
)

// validate is shared by every service for request validation.
var validate = validation.New()

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// storeError maps store sentinels to domain errors, naming the missing resource.
// Errors it does not recognize are returned unchanged.
func storeError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", resource).WithCause(err)
	case errors.Is(err, store.ErrConflict):
		return domainerrors.Conflict(resource + " was modified by another request, reload and try again").WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(resource + " already exists").WithCause(err)
	case errors.Is(err, store.ErrInUse):
		return domainerrors.Conflict(resource + " is still referenced").WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation("invalid " + resource).WithCause(err)
	}
	return err
}

// requireUser rejects anonymous callers.
func requireUser(actor *domain.User) error {
	if actor == nil {
		return domainerrors.Unauthorized("authentication required")
	}
	return nil
}

// requirePermission rejects callers without p. Anonymous callers get 401, not 403.
func requirePermission(actor *domain.User, p domain.Permission) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.HasPermission(p) {
		return domainerrors.Forbidden(string(p) + " permission required")
	}
	return nil
}

// requireAdmin rejects callers who may not manage accounts.
func requireAdmin(actor *domain.User) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return domainerrors.Forbidden("admin access required")
	}
	return nil
}

// parseOptionalDate parses a YYYY-MM-DD form value. Empty means nil.
func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return nil, domainerrors.FieldValidation(field, "Enter a valid date.")
	}
	return &t, nil
}
