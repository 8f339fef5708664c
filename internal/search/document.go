// Package search provides full-text search over the catalog using Bleve.
// Books and authors share one index and are told apart by DocType.
package search

import (
	"github.com/locallibrary/catalog-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook   DocType = "book"
	DocTypeAuthor DocType = "author"
)

// SearchDocument is the unified document structure for the Bleve index.
// Book documents carry their author's name so one query finds a book by either.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Book: title, Author: "Last, First"
	Name string `json:"name"`

	// Book-specific fields
	Summary    string   `json:"summary,omitempty"`
	Author     string   `json:"author,omitempty"`
	ISBN       string   `json:"isbn,omitempty"`
	GenreSlugs []string `json:"genre_slugs,omitempty"`

	// Author-specific fields
	BookCount int `json:"book_count,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Summary != "" {
		m["summary"] = d.Summary
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.BookCount > 0 {
		m["book_count"] = d.BookCount
	}
	return m
}

// BookToSearchDocument converts a book to a SearchDocument.
// The author name and genre slugs are resolved by the caller.
func BookToSearchDocument(book *domain.Book, author string, genreSlugs []string) *SearchDocument {
	return &SearchDocument{
		ID:         book.ID,
		Type:       DocTypeBook,
		Name:       book.Title,
		Summary:    book.Summary,
		Author:     author,
		ISBN:       book.ISBN,
		GenreSlugs: genreSlugs,
		CreatedAt:  book.CreatedAt.UnixMilli(),
		UpdatedAt:  book.UpdatedAt.UnixMilli(),
	}
}

// AuthorToSearchDocument converts an author to a SearchDocument.
func AuthorToSearchDocument(a *domain.Author, bookCount int) *SearchDocument {
	return &SearchDocument{
		ID:        a.ID,
		Type:      DocTypeAuthor,
		Name:      a.Name(),
		BookCount: bookCount,
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
	}
}
