package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/api/dto"
	"github.com/locallibrary/catalog-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of books ordered by title",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a title to the catalog",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its author, genres and copies",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates the fields present in the request",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book that has no copies",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCopy",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/instances",
		Summary:       "Add copy",
		Description:   "Adds a physical copy of a book (requires can_mark_returned)",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCopy)
}

// === DTOs ===

// ListBooksInput selects a page of books.
type ListBooksInput struct {
	dto.PageParams
}

// BookListResponse is a page of books.
type BookListResponse struct {
	Books []dto.Book `json:"books" doc:"Books ordered by title"`
	dto.Page
}

// BookListOutput wraps the list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// CreateBookRequest is the request body for a new book.
type CreateBookRequest struct {
	Title    string   `json:"title" doc:"Title"`
	AuthorID string   `json:"author_id,omitempty" doc:"Author ID"`
	Summary  string   `json:"summary" doc:"Brief description (max 1000 chars)"`
	ISBN     string   `json:"isbn" doc:"13 character ISBN"`
	GenreIDs []string `json:"genre_ids,omitempty" doc:"Genre IDs"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body dto.Book
}

// GetBookInput identifies a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailOutput wraps a resolved book for Huma.
type BookDetailOutput struct {
	Body dto.BookDetail
}

// UpdateBookRequest carries the fields to change. An empty author_id detaches the author.
type UpdateBookRequest struct {
	Title    *string   `json:"title,omitempty" doc:"Title"`
	AuthorID *string   `json:"author_id,omitempty" doc:"Author ID, empty to detach"`
	Summary  *string   `json:"summary,omitempty" doc:"Brief description"`
	ISBN     *string   `json:"isbn,omitempty" doc:"13 character ISBN"`
	GenreIDs *[]string `json:"genre_ids,omitempty" doc:"Replacement genre IDs"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// DeleteBookInput identifies a book to delete.
type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CreateCopyRequest is the request body for a new copy.
type CreateCopyRequest struct {
	Imprint string `json:"imprint" doc:"Publisher and date information"`
	Status  string `json:"status,omitempty" enum:"available,maintenance,reserved" doc:"Initial status (default available)"`
}

// CreateCopyInput wraps the copy request for Huma.
type CreateCopyInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body CreateCopyRequest
}

// CopyOutput wraps a copy for Huma.
type CopyOutput struct {
	Body dto.Copy
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	page, err := s.services.Book.ListBooks(ctx, input.Params())
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: BookListResponse{
		Books: dto.Map(page.Items, dto.BookFrom),
		Page:  dto.PageOf(page),
	}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.CreateBook(ctx, currentUser(ctx), service.CreateBookRequest{
		Title:    input.Body.Title,
		AuthorID: input.Body.AuthorID,
		Summary:  input.Body.Summary,
		ISBN:     input.Body.ISBN,
		GenreIDs: input.Body.GenreIDs,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: dto.BookFrom(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookDetailOutput, error) {
	detail, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookDetailOutput{Body: dto.BookDetailFrom(detail)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.UpdateBook(ctx, currentUser(ctx), input.ID, service.UpdateBookRequest{
		Title:    input.Body.Title,
		AuthorID: input.Body.AuthorID,
		Summary:  input.Body.Summary,
		ISBN:     input.Body.ISBN,
		GenreIDs: input.Body.GenreIDs,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: dto.BookFrom(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*dto.MessageOutput, error) {
	if err := s.services.Book.DeleteBook(ctx, currentUser(ctx), input.ID); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleCreateCopy(ctx context.Context, input *CreateCopyInput) (*CopyOutput, error) {
	bi, err := s.services.Copy.CreateCopy(ctx, currentUser(ctx), input.ID, service.CreateCopyRequest{
		Imprint: input.Body.Imprint,
		Status:  input.Body.Status,
	})
	if err != nil {
		return nil, err
	}
	return &CopyOutput{Body: dto.CopyFrom(bi)}, nil
}
