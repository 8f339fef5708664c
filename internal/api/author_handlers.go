package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/api/dto"
	"github.com/locallibrary/catalog-server/internal/service"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns a page of authors ordered by family name, then first name",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createAuthor",
		Method:        http.MethodPost,
		Path:          "/api/v1/authors",
		Summary:       "Create author",
		Description:   "Adds an author",
		Tags:          []string{"Authors"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Description: "Returns an author with a page of their books",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAuthor",
		Method:      http.MethodPatch,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Update author",
		Description: "Updates the fields present in the request. An empty date clears it.",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAuthor",
		Method:      http.MethodDelete,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Delete author",
		Description: "Deletes an author. Their books remain without an author.",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAuthor)
}

// === DTOs ===

// ListAuthorsInput selects a page of authors.
type ListAuthorsInput struct {
	dto.PageParams
}

// AuthorListResponse is a page of authors.
type AuthorListResponse struct {
	Authors []dto.Author `json:"authors" doc:"Authors by family name"`
	dto.Page
}

// AuthorListOutput wraps the list for Huma.
type AuthorListOutput struct {
	Body AuthorListResponse
}

// CreateAuthorRequest is the request body for a new author.
type CreateAuthorRequest struct {
	FirstName   string `json:"first_name" doc:"First name"`
	LastName    string `json:"last_name" doc:"Family name"`
	DateOfBirth string `json:"date_of_birth,omitempty" doc:"Date of birth (YYYY-MM-DD)"`
	DateOfDeath string `json:"date_of_death,omitempty" doc:"Date of death (YYYY-MM-DD)"`
}

// CreateAuthorInput wraps the create request for Huma.
type CreateAuthorInput struct {
	Body CreateAuthorRequest
}

// AuthorOutput wraps an author for Huma.
type AuthorOutput struct {
	Body dto.Author
}

// GetAuthorInput identifies an author and a page of their books.
type GetAuthorInput struct {
	ID string `path:"id" doc:"Author ID"`
	dto.PageParams
}

// AuthorDetailResponse is an author with a page of their books.
type AuthorDetailResponse struct {
	dto.Author
	Books     []dto.Book `json:"books" doc:"Books by this author, by title"`
	BooksPage dto.Page   `json:"books_page" doc:"Paging for books"`
}

// AuthorDetailOutput wraps the detail for Huma.
type AuthorDetailOutput struct {
	Body AuthorDetailResponse
}

// UpdateAuthorRequest carries the fields to change.
type UpdateAuthorRequest struct {
	FirstName   *string `json:"first_name,omitempty" doc:"First name"`
	LastName    *string `json:"last_name,omitempty" doc:"Family name"`
	DateOfBirth *string `json:"date_of_birth,omitempty" doc:"Date of birth, empty to clear"`
	DateOfDeath *string `json:"date_of_death,omitempty" doc:"Date of death, empty to clear"`
}

// UpdateAuthorInput wraps the update request for Huma.
type UpdateAuthorInput struct {
	ID   string `path:"id" doc:"Author ID"`
	Body UpdateAuthorRequest
}

// DeleteAuthorInput identifies an author to delete.
type DeleteAuthorInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, input *ListAuthorsInput) (*AuthorListOutput, error) {
	page, err := s.services.Author.ListAuthors(ctx, input.Params())
	if err != nil {
		return nil, err
	}
	return &AuthorListOutput{Body: AuthorListResponse{
		Authors: dto.Map(page.Items, dto.AuthorFrom),
		Page:    dto.PageOf(page),
	}}, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	a, err := s.services.Author.CreateAuthor(ctx, currentUser(ctx), service.CreateAuthorRequest{
		FirstName:   input.Body.FirstName,
		LastName:    input.Body.LastName,
		DateOfBirth: input.Body.DateOfBirth,
		DateOfDeath: input.Body.DateOfDeath,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: dto.AuthorFrom(a)}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *GetAuthorInput) (*AuthorDetailOutput, error) {
	detail, err := s.services.Author.GetAuthor(ctx, input.ID, input.Params())
	if err != nil {
		return nil, err
	}
	return &AuthorDetailOutput{Body: AuthorDetailResponse{
		Author:    dto.AuthorFrom(detail.Author),
		Books:     dto.Map(detail.Books.Items, dto.BookFrom),
		BooksPage: dto.PageOf(detail.Books),
	}}, nil
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	a, err := s.services.Author.UpdateAuthor(ctx, currentUser(ctx), input.ID, service.UpdateAuthorRequest{
		FirstName:   input.Body.FirstName,
		LastName:    input.Body.LastName,
		DateOfBirth: input.Body.DateOfBirth,
		DateOfDeath: input.Body.DateOfDeath,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: dto.AuthorFrom(a)}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *DeleteAuthorInput) (*dto.MessageOutput, error) {
	if err := s.services.Author.DeleteAuthor(ctx, currentUser(ctx), input.ID); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Author deleted"}}, nil
}
