package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/api/dto"
	"github.com/locallibrary/catalog-server/internal/service"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns every genre by name",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGenre",
		Method:        http.MethodPost,
		Path:          "/api/v1/genres",
		Summary:       "Create genre",
		Description:   "Creates a new genre. Names that normalize to an existing genre are rejected.",
		Tags:          []string{"Genres"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateGenre)
}

// === DTOs ===

// ListGenresResponse lists genres.
type ListGenresResponse struct {
	Genres []dto.Genre `json:"genres" doc:"List of genres"`
}

// ListGenresOutput wraps the list for Huma.
type ListGenresOutput struct {
	Body ListGenresResponse
}

// CreateGenreRequest is the request body for a new genre.
type CreateGenreRequest struct {
	Name string `json:"name" doc:"Genre name"`
}

// CreateGenreInput wraps the create request for Huma.
type CreateGenreInput struct {
	Body CreateGenreRequest
}

// GenreOutput wraps a genre for Huma.
type GenreOutput struct {
	Body dto.Genre
}

// === Handlers ===

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.services.Genre.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	return &ListGenresOutput{Body: ListGenresResponse{Genres: dto.Map(genres, dto.GenreFrom)}}, nil
}

func (s *Server) handleCreateGenre(ctx context.Context, input *CreateGenreInput) (*GenreOutput, error) {
	g, err := s.services.Genre.CreateGenre(ctx, currentUser(ctx), service.CreateGenreRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &GenreOutput{Body: dto.GenreFrom(g)}, nil
}
