package api

import (
	"github.com/locallibrary/catalog-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	User    *service.UserService
	Loan    *service.LoanService
	Book    *service.BookService
	Author  *service.AuthorService
	Genre   *service.GenreService
	Copy    *service.CopyService
	Search  *service.SearchService // nil disables /search
	Summary *service.SummaryService
}
