package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/store"
)

const tableUsers = "users"

var userColumns = []any{
	"id", "created_at", "updated_at", "email", "password_hash", "is_root",
	"first_name", "last_name", "last_login_at", "can_mark_returned",
}

type userRow struct {
	ID              string         `db:"id"`
	CreatedAt       string         `db:"created_at"`
	UpdatedAt       string         `db:"updated_at"`
	Email           string         `db:"email"`
	PasswordHash    string         `db:"password_hash"`
	IsRoot          bool           `db:"is_root"`
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	LastLoginAt     sql.NullString `db:"last_login_at"`
	CanMarkReturned bool           `db:"can_mark_returned"`
}

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		Syncable:     domain.Syncable{ID: r.ID, CreatedAt: parseTime(r.CreatedAt), UpdatedAt: parseTime(r.UpdatedAt)},
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsRoot:       r.IsRoot,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Permissions:  domain.UserPermissions{CanMarkReturned: r.CanMarkReturned},
	}
	if r.LastLoginAt.Valid {
		t := parseTime(r.LastLoginAt.String)
		u.LastLoginAt = &t
	}
	return u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user. A duplicate email (case-insensitive) returns store.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := exec(ctx, s.db, dialect.Insert(tableUsers).Rows(goqu.Record{
		"id":                u.ID,
		"created_at":        formatTime(u.CreatedAt),
		"updated_at":        formatTime(u.UpdatedAt),
		"email":             strings.TrimSpace(u.Email),
		"email_lower":       normalizeEmail(u.Email),
		"password_hash":     u.PasswordHash,
		"is_root":           boolToInt(u.IsRoot),
		"first_name":        u.FirstName,
		"last_name":         u.LastName,
		"can_mark_returned": boolToInt(u.Permissions.CanMarkReturned),
	}))
	return err
}

// GetUser returns the user with id, or store.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserWhere(ctx, goqu.Ex{"id": id})
}

// GetUserByEmail looks a user up by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserWhere(ctx, goqu.Ex{"email_lower": normalizeEmail(email)})
}

func (s *Store) getUserWhere(ctx context.Context, where goqu.Ex) (*domain.User, error) {
	var row userRow
	if err := get(ctx, s.db, &row, dialect.From(tableUsers).Select(userColumns...).Where(where)); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// HasRootUser reports whether first-run setup has happened.
func (s *Store) HasRootUser(ctx context.Context) (bool, error) {
	n, err := count(ctx, s.db, dialect.From(tableUsers).Where(goqu.Ex{"is_root": 1}))
	return n > 0, err
}

// ListUsers returns all users ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := selectAll(ctx, s.db, &rows, dialect.From(tableUsers).Select(userColumns...).Order(goqu.I("email_lower").Asc())); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// SetPermissions replaces a user's permission grants.
func (s *Store) SetPermissions(ctx context.Context, id string, perms domain.UserPermissions, now time.Time) error {
	n, err := exec(ctx, s.db, dialect.Update(tableUsers).
		Set(goqu.Record{
			"can_mark_returned": boolToInt(perms.CanMarkReturned),
			"updated_at":        formatTime(now),
		}).
		Where(goqu.Ex{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// RecordLogin stamps the user's last login time.
func (s *Store) RecordLogin(ctx context.Context, id string, at time.Time) error {
	_, err := exec(ctx, s.db, dialect.Update(tableUsers).
		Set(goqu.Record{"last_login_at": formatTime(at)}).
		Where(goqu.Ex{"id": id}))
	return err
}
