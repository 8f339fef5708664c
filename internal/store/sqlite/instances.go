package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/store"
)

const tableInstances = "book_instances"

var instanceColumns = []any{
	"bi.id", "bi.created_at", "bi.updated_at", "bi.book_id", "bi.imprint",
	"bi.due_back", "bi.status", "bi.borrower_id", goqu.I("b.title").As("book_title"),
}

type instanceRow struct {
	ID         string         `db:"id"`
	CreatedAt  string         `db:"created_at"`
	UpdatedAt  string         `db:"updated_at"`
	BookID     string         `db:"book_id"`
	Imprint    string         `db:"imprint"`
	DueBack    sql.NullString `db:"due_back"`
	Status     string         `db:"status"`
	BorrowerID sql.NullString `db:"borrower_id"`
	BookTitle  string         `db:"book_title"`
}

func (r instanceRow) toDomain() *domain.BookInstanceDetail {
	return &domain.BookInstanceDetail{
		BookInstance: domain.BookInstance{
			Syncable:   domain.Syncable{ID: r.ID, CreatedAt: parseTime(r.CreatedAt), UpdatedAt: parseTime(r.UpdatedAt)},
			BookID:     r.BookID,
			Imprint:    r.Imprint,
			DueBack:    parseNullDate(r.DueBack),
			Status:     domain.LoanStatus(r.Status),
			BorrowerID: r.BorrowerID.String,
		},
		BookTitle: r.BookTitle,
	}
}

// instances selects copies joined to their book for the title.
func instances() *goqu.SelectDataset {
	return dialect.From(goqu.T(tableInstances).As("bi")).
		Join(goqu.T(tableBooks).As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("bi.book_id")})).
		Select(instanceColumns...)
}

// LoanFilter narrows a loan listing. The zero value lists every copy on loan.
type LoanFilter struct {
	BorrowerID string
}

// CreateInstance inserts a copy. An unknown book returns store.ErrInvalidInput.
func (s *Store) CreateInstance(ctx context.Context, bi *domain.BookInstance) error {
	_, err := exec(ctx, s.db, dialect.Insert(tableInstances).Rows(goqu.Record{
		"id":          bi.ID,
		"created_at":  formatTime(bi.CreatedAt),
		"updated_at":  formatTime(bi.UpdatedAt),
		"book_id":     bi.BookID,
		"imprint":     bi.Imprint,
		"due_back":    nullDate(bi.DueBack),
		"status":      string(bi.Status),
		"borrower_id": nullString(bi.BorrowerID),
	}))
	return invalidReference(err)
}

// GetInstance returns a copy with its book title, or store.ErrNotFound.
func (s *Store) GetInstance(ctx context.Context, id string) (*domain.BookInstanceDetail, error) {
	var row instanceRow
	if err := get(ctx, s.db, &row, instances().Where(goqu.Ex{"bi.id": id})); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// ListInstancesByBook returns a book's copies ordered by imprint.
func (s *Store) ListInstancesByBook(ctx context.Context, bookID string) ([]*domain.BookInstanceDetail, error) {
	var rows []instanceRow
	if err := selectAll(ctx, s.db, &rows, instances().Where(goqu.Ex{"bi.book_id": bookID}).
		Order(goqu.I("bi.imprint").Asc(), goqu.I("bi.id").Asc())); err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	out := make([]*domain.BookInstanceDetail, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// ListLoans returns copies on loan ordered by due date ascending, then id.
// Copies without a due date sort last.
func (s *Store) ListLoans(ctx context.Context, filter LoanFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.BookInstanceDetail], error) {
	where := goqu.Ex{"bi.status": string(domain.LoanStatusOnLoan)}
	if filter.BorrowerID != "" {
		where["bi.borrower_id"] = filter.BorrowerID
	}

	ds := instances().Where(where).Order(
		goqu.L(`"bi"."due_back" IS NULL`).Asc(),
		goqu.I("bi.due_back").Asc(),
		goqu.I("bi.id").Asc(),
	)

	total, err := count(ctx, s.db, ds)
	if err != nil {
		return nil, fmt.Errorf("count loans: %w", err)
	}

	page, offset, err := paged(ds, params)
	if err != nil {
		return nil, err
	}

	var rows []instanceRow
	if err := selectAll(ctx, s.db, &rows, page); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	items := make([]*domain.BookInstanceDetail, len(rows))
	for i, r := range rows {
		items[i] = r.toDomain()
	}
	return store.NewPage(items, offset, total), nil
}

// UpdateDueBack sets a copy's due date if the row still carries expectedUpdatedAt.
// It returns store.ErrNotFound for an unknown id and store.ErrConflict when the row changed since it was read.
// Status and borrower are left as they are.
func (s *Store) UpdateDueBack(ctx context.Context, id string, due time.Time, expectedUpdatedAt, now time.Time) error {
	n, err := exec(ctx, s.db, dialect.Update(tableInstances).
		Set(goqu.Record{
			"due_back":   due.Format(domain.DateLayout),
			"updated_at": formatTime(now),
		}).
		Where(goqu.Ex{"id": id, "updated_at": formatTime(expectedUpdatedAt)}))
	if err != nil {
		return fmt.Errorf("update due back: %w", err)
	}
	if n == 1 {
		return nil
	}

	exists, err := count(ctx, s.db, dialect.From(tableInstances).Where(goqu.Ex{"id": id}))
	if err != nil {
		return err
	}
	if exists == 0 {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

// Checkout puts a copy on loan to borrowerID. Used by seeding; circulation desks live elsewhere.
func (s *Store) Checkout(ctx context.Context, id, borrowerID string, due, now time.Time) error {
	n, err := exec(ctx, s.db, dialect.Update(tableInstances).
		Set(goqu.Record{
			"status":      string(domain.LoanStatusOnLoan),
			"borrower_id": borrowerID,
			"due_back":    due.Format(domain.DateLayout),
			"updated_at":  formatTime(now),
		}).
		Where(goqu.Ex{"id": id, "status": string(domain.LoanStatusAvailable)}))
	if err != nil {
		return invalidReference(err)
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

// CatalogCounts are the totals shown on the catalog summary.
type CatalogCounts struct {
	Books              int `json:"num_books"`
	Instances          int `json:"num_instances"`
	InstancesAvailable int `json:"num_instances_available"`
	Authors            int `json:"num_authors"`
	Genres             int `json:"num_genres"`
}

// Counts returns catalog totals.
func (s *Store) Counts(ctx context.Context) (*CatalogCounts, error) {
	var c CatalogCounts
	queries := []struct {
		ds  *goqu.SelectDataset
		dst *int
	}{
		{dialect.From(tableBooks), &c.Books},
		{dialect.From(tableInstances), &c.Instances},
		{dialect.From(tableInstances).Where(goqu.Ex{"status": string(domain.LoanStatusAvailable)}), &c.InstancesAvailable},
		{dialect.From(tableAuthors), &c.Authors},
		{dialect.From(tableGenres), &c.Genres},
	}
	for _, q := range queries {
		n, err := count(ctx, s.db, q.ds)
		if err != nil {
			return nil, fmt.Errorf("catalog counts: %w", err)
		}
		*q.dst = n
	}
	return &c, nil
}
