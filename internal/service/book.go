package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// BookService orchestrates book operations. Any signed-in user may edit books.
type BookService struct {
	store  *sqlite.Store
	search *SearchService
	logger *slog.Logger
}

// NewBookService creates a new book service. search may be nil.
func NewBookService(store *sqlite.Store, search *SearchService, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// CreateBookRequest holds the fields of a new book.
type CreateBookRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	AuthorID string   `json:"author_id,omitempty" validate:"omitempty,max=100"`
	Summary  string   `json:"summary" validate:"required,max=1000"`
	ISBN     string   `json:"isbn" validate:"required,isbn"`
	GenreIDs []string `json:"genre_ids,omitempty" validate:"omitempty,dive,required"`
}

// UpdateBookRequest changes the fields that are set.
// An empty author_id detaches the author; genre_ids replaces the whole set.
type UpdateBookRequest struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	AuthorID *string   `json:"author_id,omitempty" validate:"omitempty,max=100"`
	Summary  *string   `json:"summary,omitempty" validate:"omitempty,min=1,max=1000"`
	ISBN     *string   `json:"isbn,omitempty" validate:"omitempty,isbn"`
	GenreIDs *[]string `json:"genre_ids,omitempty" validate:"omitempty,dive,required"`
}

// CreateBook adds a book.
func (s *BookService) CreateBook(ctx context.Context, actor *domain.User, req CreateBookRequest) (*domain.Book, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	b := &domain.Book{
		Title:    strings.TrimSpace(req.Title),
		AuthorID: req.AuthorID,
		Summary:  req.Summary,
		ISBN:     normalizeISBN(req.ISBN),
		GenreIDs: dedupe(req.GenreIDs),
	}
	if err := s.checkReferences(ctx, b); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, err
	}
	b.ID = bookID
	b.InitTimestamps()

	if err := s.store.CreateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", storeError(err, "book"))
	}

	s.search.IndexBook(ctx, b)
	s.refreshAuthor(ctx, b.AuthorID)
	s.logger.Info("book created", "book_id", b.ID, "title", b.Title, "user_id", actor.ID)
	return b, nil
}

// GetBook returns a book with its author, genres and copies.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.BookDetail, error) {
	b, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError(err, "book")
	}

	detail := &domain.BookDetail{Book: *b}

	if b.AuthorID != "" {
		a, err := s.store.GetAuthor(ctx, b.AuthorID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get author: %w", err)
		}
		detail.Author = a
	}

	if detail.Genres, err = s.store.GetGenresByIDs(ctx, b.GenreIDs); err != nil {
		return nil, err
	}

	copies, err := s.store.ListInstancesByBook(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	detail.Instances = make([]*domain.BookInstance, len(copies))
	for i, c := range copies {
		detail.Instances[i] = &c.BookInstance
	}
	return detail, nil
}

// ListBooks returns books ordered by title.
func (s *BookService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	page, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, storeError(err, "cursor")
	}
	return page, nil
}

// UpdateBook applies the set fields of req.
func (s *BookService) UpdateBook(ctx context.Context, actor *domain.User, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	b, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError(err, "book")
	}
	previousAuthor := b.AuthorID

	if req.Title != nil {
		b.Title = strings.TrimSpace(*req.Title)
	}
	if req.AuthorID != nil {
		b.AuthorID = *req.AuthorID
	}
	if req.Summary != nil {
		b.Summary = *req.Summary
	}
	if req.ISBN != nil {
		b.ISBN = normalizeISBN(*req.ISBN)
	}
	if req.GenreIDs != nil {
		b.GenreIDs = dedupe(*req.GenreIDs)
	}
	if err := s.checkReferences(ctx, b); err != nil {
		return nil, err
	}
	b.Touch()

	if err := s.store.UpdateBook(ctx, b); err != nil {
		return nil, storeError(err, "book")
	}

	s.search.IndexBook(ctx, b)
	if previousAuthor != b.AuthorID {
		s.refreshAuthor(ctx, previousAuthor)
		s.refreshAuthor(ctx, b.AuthorID)
	}
	return b, nil
}

// DeleteBook removes a book. A book with copies cannot be deleted.
func (s *BookService) DeleteBook(ctx context.Context, actor *domain.User, bookID string) error {
	if err := requireUser(actor); err != nil {
		return err
	}

	b, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return storeError(err, "book")
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrInUse) {
			return domainerrors.Conflict("book has copies in the catalog, remove them first").WithCause(err)
		}
		return storeError(err, "book")
	}

	s.search.Remove(bookID)
	s.refreshAuthor(ctx, b.AuthorID)
	s.logger.Info("book deleted", "book_id", bookID, "user_id", actor.ID)
	return nil
}

// checkReferences reports unknown authors and genres as field errors.
func (s *BookService) checkReferences(ctx context.Context, b *domain.Book) error {
	if b.AuthorID != "" {
		ok, err := s.store.AuthorExists(ctx, b.AuthorID)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.FieldValidation("author_id", "Select a valid author.")
		}
	}
	if len(b.GenreIDs) > 0 {
		found, err := s.store.GetGenresByIDs(ctx, b.GenreIDs)
		if err != nil {
			return err
		}
		if len(found) != len(b.GenreIDs) {
			return domainerrors.FieldValidation("genre_ids", "Select valid genres.")
		}
	}
	return nil
}

// refreshAuthor reindexes an author whose book count may have changed.
func (s *BookService) refreshAuthor(ctx context.Context, authorID string) {
	if s.search == nil || authorID == "" {
		return
	}
	a, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return
	}
	s.search.IndexAuthor(ctx, a)
}

func normalizeISBN(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
}

func dedupe(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
