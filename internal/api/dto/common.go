// Package dto provides request and response types for the catalog API.
// These types are used by huma to generate OpenAPI documentation and perform validation.
package dto

import "github.com/locallibrary/catalog-server/internal/store"

// PageParams defines cursor pagination query parameters.
type PageParams struct {
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Items per page (default 20)"`
}

// Params converts the query parameters to store pagination.
func (p PageParams) Params() store.PaginationParams {
	return store.PaginationParams{Cursor: p.Cursor, Limit: p.Limit}
}

// Page carries the paging fields shared by list responses.
type Page struct {
	NextCursor string `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool   `json:"has_more" doc:"Whether more pages exist"`
	Total      int    `json:"total" doc:"Total count across all pages"`
}

// PageOf copies the paging fields of a store page.
func PageOf[T any](p *store.PaginatedResult[T]) Page {
	return Page{NextCursor: p.NextCursor, HasMore: p.HasMore, Total: p.Total}
}

// Map converts each item of a slice.
func Map[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// IDParam is a path parameter for resource IDs.
type IDParam struct {
	ID string `path:"id" doc:"Resource identifier"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}
