package sqlite

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/locallibrary/catalog-server/internal/domain"
)

const (
	tableGenres     = "genres"
	tableBookGenres = "book_genres"
)

var genreColumns = []any{"id", "created_at", "updated_at", "name", "slug"}

type genreRow struct {
	ID        string `db:"id"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
	Name      string `db:"name"`
	Slug      string `db:"slug"`
}

func (r genreRow) toDomain() *domain.Genre {
	return &domain.Genre{
		Syncable: domain.Syncable{ID: r.ID, CreatedAt: parseTime(r.CreatedAt), UpdatedAt: parseTime(r.UpdatedAt)},
		Name:     r.Name,
		Slug:     r.Slug,
	}
}

func genresFromRows(rows []genreRow) []*domain.Genre {
	out := make([]*domain.Genre, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}

// CreateGenre inserts a genre. A duplicate slug returns store.ErrAlreadyExists.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	_, err := exec(ctx, s.db, dialect.Insert(tableGenres).Rows(goqu.Record{
		"id":         g.ID,
		"created_at": formatTime(g.CreatedAt),
		"updated_at": formatTime(g.UpdatedAt),
		"name":       g.Name,
		"slug":       g.Slug,
	}))
	return err
}

// GetGenreBySlug returns the genre with slug, or store.ErrNotFound.
func (s *Store) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	var row genreRow
	if err := get(ctx, s.db, &row, dialect.From(tableGenres).Select(genreColumns...).Where(goqu.Ex{"slug": slug})); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// ListGenres returns all genres ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	var rows []genreRow
	if err := selectAll(ctx, s.db, &rows, dialect.From(tableGenres).Select(genreColumns...).
		Order(goqu.I("name").Asc(), goqu.I("id").Asc())); err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genresFromRows(rows), nil
}

// GetGenresByIDs returns the genres among ids that exist, ordered by name.
func (s *Store) GetGenresByIDs(ctx context.Context, ids []string) ([]*domain.Genre, error) {
	if len(ids) == 0 {
		return []*domain.Genre{}, nil
	}
	var rows []genreRow
	if err := selectAll(ctx, s.db, &rows, dialect.From(tableGenres).Select(genreColumns...).
		Where(goqu.Ex{"id": ids}).Order(goqu.I("name").Asc())); err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return genresFromRows(rows), nil
}

// GetBookGenres returns the genres attached to a book.
func (s *Store) GetBookGenres(ctx context.Context, bookID string) ([]*domain.Genre, error) {
	ds := dialect.From(goqu.T(tableGenres).As("g")).
		Join(goqu.T(tableBookGenres).As("bg"), goqu.On(goqu.Ex{"bg.genre_id": goqu.I("g.id")})).
		Select("g.id", "g.created_at", "g.updated_at", "g.name", "g.slug").
		Where(goqu.Ex{"bg.book_id": bookID}).
		Order(goqu.I("g.name").Asc())

	var rows []genreRow
	if err := selectAll(ctx, s.db, &rows, ds); err != nil {
		return nil, fmt.Errorf("get book genres: %w", err)
	}
	return genresFromRows(rows), nil
}

// CountGenres returns the number of genres.
func (s *Store) CountGenres(ctx context.Context) (int, error) {
	return count(ctx, s.db, dialect.From(tableGenres))
}

func genreIDsByBook(ctx context.Context, q querier, bookIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}
	var links []struct {
		BookID  string `db:"book_id"`
		GenreID string `db:"genre_id"`
	}
	if err := selectAll(ctx, q, &links, dialect.From(tableBookGenres).Select("book_id", "genre_id").
		Where(goqu.Ex{"book_id": bookIDs}).Order(goqu.I("genre_id").Asc())); err != nil {
		return nil, fmt.Errorf("book genre links: %w", err)
	}
	for _, l := range links {
		out[l.BookID] = append(out[l.BookID], l.GenreID)
	}
	return out, nil
}

func replaceBookGenres(ctx context.Context, q querier, bookID string, genreIDs []string) error {
	if _, err := exec(ctx, q, dialect.Delete(tableBookGenres).Where(goqu.Ex{"book_id": bookID})); err != nil {
		return err
	}
	if len(genreIDs) == 0 {
		return nil
	}
	rows := make([]any, 0, len(genreIDs))
	seen := make(map[string]bool, len(genreIDs))
	for _, gid := range genreIDs {
		if seen[gid] {
			continue
		}
		seen[gid] = true
		rows = append(rows, goqu.Record{"book_id": bookID, "genre_id": gid})
	}
	_, err := exec(ctx, q, dialect.Insert(tableBookGenres).Rows(rows...))
	return invalidReference(err)
}
