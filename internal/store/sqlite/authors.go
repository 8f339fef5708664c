package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/store"
)

const tableAuthors = "authors"

var authorColumns = []any{"id", "created_at", "updated_at", "first_name", "last_name", "date_of_birth", "date_of_death"}

type authorRow struct {
	ID          string         `db:"id"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
	FirstName   string         `db:"first_name"`
	LastName    string         `db:"last_name"`
	DateOfBirth sql.NullString `db:"date_of_birth"`
	DateOfDeath sql.NullString `db:"date_of_death"`
}

func (r authorRow) toDomain() *domain.Author {
	return &domain.Author{
		Syncable: domain.Syncable{
			ID:        r.ID,
			CreatedAt: parseTime(r.CreatedAt),
			UpdatedAt: parseTime(r.UpdatedAt),
		},
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: parseNullDate(r.DateOfBirth),
		DateOfDeath: parseNullDate(r.DateOfDeath),
	}
}

func authorRecord(a *domain.Author) goqu.Record {
	return goqu.Record{
		"id":            a.ID,
		"created_at":    formatTime(a.CreatedAt),
		"updated_at":    formatTime(a.UpdatedAt),
		"first_name":    a.FirstName,
		"last_name":     a.LastName,
		"date_of_birth": nullDate(a.DateOfBirth),
		"date_of_death": nullDate(a.DateOfDeath),
	}
}

// CreateAuthor inserts a new author.
func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) error {
	_, err := exec(ctx, s.db, dialect.Insert(tableAuthors).Rows(authorRecord(a)))
	return err
}

// GetAuthor returns the author with id, or store.ErrNotFound.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	var row authorRow
	if err := get(ctx, s.db, &row, dialect.From(tableAuthors).Select(authorColumns...).Where(goqu.Ex{"id": id})); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// UpdateAuthor overwrites the author's fields.
func (s *Store) UpdateAuthor(ctx context.Context, a *domain.Author) error {
	rec := authorRecord(a)
	delete(rec, "id")
	delete(rec, "created_at")

	n, err := exec(ctx, s.db, dialect.Update(tableAuthors).Set(rec).Where(goqu.Ex{"id": a.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteAuthor removes an author. Their books keep existing with no author.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	n, err := exec(ctx, s.db, dialect.Delete(tableAuthors).Where(goqu.Ex{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListAuthors returns authors ordered by last name, first name.
func (s *Store) ListAuthors(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Author], error) {
	ds := dialect.From(tableAuthors).Select(authorColumns...).
		Order(goqu.I("last_name").Asc(), goqu.I("first_name").Asc(), goqu.I("id").Asc())

	total, err := count(ctx, s.db, ds)
	if err != nil {
		return nil, fmt.Errorf("count authors: %w", err)
	}

	page, offset, err := paged(ds, params)
	if err != nil {
		return nil, err
	}

	var rows []authorRow
	if err := selectAll(ctx, s.db, &rows, page); err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	items := make([]*domain.Author, len(rows))
	for i, r := range rows {
		items[i] = r.toDomain()
	}
	return store.NewPage(items, offset, total), nil
}

// AllAuthors returns every author, for search reindexing.
func (s *Store) AllAuthors(ctx context.Context) ([]*domain.Author, error) {
	var rows []authorRow
	if err := selectAll(ctx, s.db, &rows, dialect.From(tableAuthors).Select(authorColumns...).Order(goqu.I("id").Asc())); err != nil {
		return nil, fmt.Errorf("all authors: %w", err)
	}
	out := make([]*domain.Author, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// AuthorExists reports whether id names an author.
func (s *Store) AuthorExists(ctx context.Context, id string) (bool, error) {
	n, err := count(ctx, s.db, dialect.From(tableAuthors).Where(goqu.Ex{"id": id}))
	return n > 0, err
}
