package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// AuthorService manages authors. Any signed-in user may edit them.
type AuthorService struct {
	store  *sqlite.Store
	search *SearchService
	logger *slog.Logger
}

// NewAuthorService creates an author service. search may be nil.
func NewAuthorService(store *sqlite.Store, search *SearchService, logger *slog.Logger) *AuthorService {
	return &AuthorService{store: store, search: search, logger: logger}
}

// CreateAuthorRequest holds the fields of a new author. Dates are YYYY-MM-DD.
type CreateAuthorRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	DateOfDeath string `json:"date_of_death,omitempty" validate:"omitempty,date"`
}

// UpdateAuthorRequest changes the fields that are set. An empty date clears it.
type UpdateAuthorRequest struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	DateOfDeath *string `json:"date_of_death,omitempty" validate:"omitempty,date"`
}

// AuthorDetail is an author with one page of their books.
type AuthorDetail struct {
	*domain.Author
	Books *store.PaginatedResult[*domain.Book] `json:"books"`
}

// CreateAuthor adds an author.
func (s *AuthorService) CreateAuthor(ctx context.Context, actor *domain.User, req CreateAuthorRequest) (*domain.Author, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	a := &domain.Author{FirstName: req.FirstName, LastName: req.LastName}
	if err := applyLifespan(a, &req.DateOfBirth, &req.DateOfDeath); err != nil {
		return nil, err
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, err
	}
	a.ID = authorID
	a.InitTimestamps()

	if err := s.store.CreateAuthor(ctx, a); err != nil {
		return nil, fmt.Errorf("create author: %w", storeError(err, "author"))
	}

	s.search.IndexAuthor(ctx, a)
	s.logger.Info("author created", "author_id", a.ID, "name", a.Name(), "user_id", actor.ID)
	return a, nil
}

// GetAuthor returns an author and one page of their books.
func (s *AuthorService) GetAuthor(ctx context.Context, authorID string, params store.PaginationParams) (*AuthorDetail, error) {
	a, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, storeError(err, "author")
	}
	books, err := s.store.ListBooksByAuthor(ctx, authorID, params)
	if err != nil {
		return nil, storeError(err, "cursor")
	}
	return &AuthorDetail{Author: a, Books: books}, nil
}

// ListAuthors returns authors by last name, then first name.
func (s *AuthorService) ListAuthors(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Author], error) {
	page, err := s.store.ListAuthors(ctx, params)
	if err != nil {
		return nil, storeError(err, "cursor")
	}
	return page, nil
}

// UpdateAuthor applies the set fields of req.
func (s *AuthorService) UpdateAuthor(ctx context.Context, actor *domain.User, authorID string, req UpdateAuthorRequest) (*domain.Author, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	a, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, storeError(err, "author")
	}

	if req.FirstName != nil {
		a.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		a.LastName = *req.LastName
	}
	if err := applyLifespan(a, req.DateOfBirth, req.DateOfDeath); err != nil {
		return nil, err
	}
	a.Touch()

	if err := s.store.UpdateAuthor(ctx, a); err != nil {
		return nil, storeError(err, "author")
	}

	s.search.IndexAuthor(ctx, a)
	s.search.ReindexAuthorBooks(ctx, a.ID)
	return a, nil
}

// DeleteAuthor removes an author. Their books stay in the catalog without an author.
func (s *AuthorService) DeleteAuthor(ctx context.Context, actor *domain.User, authorID string) error {
	if err := requireUser(actor); err != nil {
		return err
	}

	bookIDs, err := s.search.authorBookIDs(ctx, authorID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteAuthor(ctx, authorID); err != nil {
		return storeError(err, "author")
	}

	s.search.Remove(authorID)
	s.search.ReindexBooks(ctx, bookIDs)
	s.logger.Info("author deleted", "author_id", authorID, "user_id", actor.ID, "orphaned_books", len(bookIDs))
	return nil
}

// applyLifespan sets the dates that are non-nil and checks death is not before birth.
func applyLifespan(a *domain.Author, birth, death *string) error {
	if birth != nil {
		d, err := parseOptionalDate("date_of_birth", *birth)
		if err != nil {
			return err
		}
		a.DateOfBirth = d
	}
	if death != nil {
		d, err := parseOptionalDate("date_of_death", *death)
		if err != nil {
			return err
		}
		a.DateOfDeath = d
	}
	if !a.LifespanValid() {
		return domainerrors.FieldValidation("date_of_death", "Date of death cannot be before date of birth.")
	}
	return nil
}
