package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/store"
)

const tableBooks = "books"

var bookColumns = []any{"id", "created_at", "updated_at", "title", "author_id", "summary", "isbn"}

type bookRow struct {
	ID        string         `db:"id"`
	CreatedAt string         `db:"created_at"`
	UpdatedAt string         `db:"updated_at"`
	Title     string         `db:"title"`
	AuthorID  sql.NullString `db:"author_id"`
	Summary   string         `db:"summary"`
	ISBN      string         `db:"isbn"`
}

func (r bookRow) toDomain() *domain.Book {
	return &domain.Book{
		Syncable: domain.Syncable{ID: r.ID, CreatedAt: parseTime(r.CreatedAt), UpdatedAt: parseTime(r.UpdatedAt)},
		Title:    r.Title,
		AuthorID: r.AuthorID.String,
		Summary:  r.Summary,
		ISBN:     r.ISBN,
		GenreIDs: []string{},
	}
}

func bookRecord(b *domain.Book) goqu.Record {
	return goqu.Record{
		"id":         b.ID,
		"created_at": formatTime(b.CreatedAt),
		"updated_at": formatTime(b.UpdatedAt),
		"title":      b.Title,
		"author_id":  nullString(b.AuthorID),
		"summary":    b.Summary,
		"isbn":       b.ISBN,
	}
}

// CreateBook inserts a book and its genre links in one transaction.
// An unknown author or genre returns store.ErrInvalidInput.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := exec(ctx, tx, dialect.Insert(tableBooks).Rows(bookRecord(b))); err != nil {
			return invalidReference(err)
		}
		return replaceBookGenres(ctx, tx, b.ID, b.GenreIDs)
	})
}

// GetBook returns the book with id and its genre ids, or store.ErrNotFound.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var row bookRow
	if err := get(ctx, s.db, &row, dialect.From(tableBooks).Select(bookColumns...).Where(goqu.Ex{"id": id})); err != nil {
		return nil, err
	}
	b := row.toDomain()

	links, err := genreIDsByBook(ctx, s.db, []string{b.ID})
	if err != nil {
		return nil, err
	}
	if ids := links[b.ID]; ids != nil {
		b.GenreIDs = ids
	}
	return b, nil
}

// UpdateBook overwrites a book's fields and genre links.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	rec := bookRecord(b)
	delete(rec, "id")
	delete(rec, "created_at")

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, dialect.Update(tableBooks).Set(rec).Where(goqu.Ex{"id": b.ID}))
		if err != nil {
			return invalidReference(err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return replaceBookGenres(ctx, tx, b.ID, b.GenreIDs)
	})
}

// DeleteBook removes a book. It fails with store.ErrInUse while copies of it exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	n, err := exec(ctx, s.db, dialect.Delete(tableBooks).Where(goqu.Ex{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListBooks returns books ordered by title.
func (s *Store) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	ds := dialect.From(tableBooks).Select(bookColumns...).
		Order(goqu.I("title").Asc(), goqu.I("id").Asc())
	return s.listBooks(ctx, ds, params)
}

// ListBooksByAuthor returns an author's books ordered by title.
func (s *Store) ListBooksByAuthor(ctx context.Context, authorID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	ds := dialect.From(tableBooks).Select(bookColumns...).
		Where(goqu.Ex{"author_id": authorID}).
		Order(goqu.I("title").Asc(), goqu.I("id").Asc())
	return s.listBooks(ctx, ds, params)
}

func (s *Store) listBooks(ctx context.Context, ds *goqu.SelectDataset, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	total, err := count(ctx, s.db, ds)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	page, offset, err := paged(ds, params)
	if err != nil {
		return nil, err
	}

	var rows []bookRow
	if err := selectAll(ctx, s.db, &rows, page); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	books, err := s.withGenreIDs(ctx, rows)
	if err != nil {
		return nil, err
	}
	return store.NewPage(books, offset, total), nil
}

// AllBooks returns every book with genre ids, for search reindexing.
func (s *Store) AllBooks(ctx context.Context) ([]*domain.Book, error) {
	var rows []bookRow
	if err := selectAll(ctx, s.db, &rows, dialect.From(tableBooks).Select(bookColumns...).Order(goqu.I("id").Asc())); err != nil {
		return nil, fmt.Errorf("all books: %w", err)
	}
	return s.withGenreIDs(ctx, rows)
}

func (s *Store) withGenreIDs(ctx context.Context, rows []bookRow) ([]*domain.Book, error) {
	books := make([]*domain.Book, len(rows))
	ids := make([]string, len(rows))
	for i, r := range rows {
		books[i] = r.toDomain()
		ids[i] = r.ID
	}

	links, err := genreIDsByBook(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if g := links[b.ID]; g != nil {
			b.GenreIDs = g
		}
	}
	return books, nil
}

// invalidReference turns a foreign-key failure on insert or update into ErrInvalidInput.
func invalidReference(err error) error {
	if errors.Is(err, store.ErrInUse) {
		return store.ErrInvalidInput.WithCause(err)
	}
	return err
}
