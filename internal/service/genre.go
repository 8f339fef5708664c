package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/genre"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// GenreService manages the genre list.
type GenreService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewGenreService creates a new genre service.
func NewGenreService(store *sqlite.Store, logger *slog.Logger) *GenreService {
	return &GenreService{store: store, logger: logger}
}

// CreateGenreRequest names a new genre.
type CreateGenreRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// ListGenres returns all genres by name.
func (s *GenreService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.store.ListGenres(ctx)
}

// CreateGenre adds a genre. Names that slugify to an existing genre, including
// known aliases such as "Sci-Fi" for "Science Fiction", are rejected.
func (s *GenreService) CreateGenre(ctx context.Context, actor *domain.User, req CreateGenreRequest) (*domain.Genre, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req.Name)
}

// EnsureDefaults creates any of genre.DefaultGenres that are missing.
func (s *GenreService) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, name := range genre.DefaultGenres {
		if _, err := s.create(ctx, name); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				continue
			}
			return created, err
		}
		created++
	}
	if created > 0 {
		s.logger.Info("default genres created", "count", created)
	}
	return created, nil
}

func (s *GenreService) create(ctx context.Context, name string) (*domain.Genre, error) {
	name = genre.NormalizeName(name)
	slug := genre.CanonicalSlug(name)
	if slug == "" {
		return nil, domainerrors.FieldValidation("name", "Name must contain letters or digits.")
	}

	if existing, err := s.store.GetGenreBySlug(ctx, slug); err == nil {
		return nil, domainerrors.AlreadyExists("genre already exists").WithCause(
			errors.New("matches " + existing.Name))
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	genreID, err := id.Generate("genre")
	if err != nil {
		return nil, err
	}
	g := &domain.Genre{Name: name, Slug: slug}
	g.ID = genreID
	g.InitTimestamps()

	if err := s.store.CreateGenre(ctx, g); err != nil {
		return nil, storeError(err, "genre")
	}
	return g, nil
}
