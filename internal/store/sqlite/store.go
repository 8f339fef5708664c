// Package sqlite persists the catalog (authors, books, genres, copies and users) in SQLite.
//
// Queries are built with goqu's sqlite3 dialect and scanned with sqlx into
// row structs, which are then converted to domain types.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const driverName = "sqlite"

var dialect = goqu.Dialect("sqlite3")

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
	goqu.SetDefaultPrepared(true)
}

// Store provides SQLite-backed persistence for the catalog.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open creates or opens the catalog database at path.
// It configures WAL mode, sets pragmas, and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// Pragmas in the DSN apply to every pooled connection.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// sqlBuilder is any goqu dataset that renders to SQL.
type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

type querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func render(b sqlBuilder) (string, []any, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return query, args, nil
}

// get runs a single-row query; no row maps to store.ErrNotFound.
func get(ctx context.Context, q querier, dest any, b sqlBuilder) error {
	query, args, err := render(b)
	if err != nil {
		return err
	}
	if err := q.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func selectAll(ctx context.Context, q querier, dest any, b sqlBuilder) error {
	query, args, err := render(b)
	if err != nil {
		return err
	}
	return q.SelectContext(ctx, dest, query, args...)
}

func exec(ctx context.Context, q querier, b sqlBuilder) (int64, error) {
	query, args, err := render(b)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateError(err)
	}
	return res.RowsAffected()
}

func count(ctx context.Context, q querier, ds *goqu.SelectDataset) (int, error) {
	var n int
	err := get(ctx, q, &n, ds.ClearSelect().ClearOrder().ClearLimit().ClearOffset().Select(goqu.COUNT(goqu.Star())))
	return n, err
}

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// translateError maps SQLite constraint failures to store sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return store.ErrAlreadyExists.WithCause(err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrInUse.WithCause(err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return store.ErrInvalidInput.WithCause(err)
	}
	return err
}

func paged(ds *goqu.SelectDataset, params store.PaginationParams) (*goqu.SelectDataset, int, error) {
	params.Validate()
	offset, err := params.Offset()
	if err != nil {
		return nil, 0, store.ErrInvalidInput.WithCause(err)
	}
	//nolint:gosec // both bounded by Validate and Offset
	return ds.Limit(uint(params.Limit)).Offset(uint(offset)), offset, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateLayout)
}

func parseNullDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := domain.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
