package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/search"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// SearchService keeps the search index in step with the catalog and runs queries.
//
// Index updates are best-effort: a failure is logged and the catalog write stands.
// A nil *SearchService ignores index updates, which keeps tests free of Bleve.
type SearchService struct {
	index  *search.SearchIndex
	store  *sqlite.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *sqlite.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query across books and authors.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Limit <= 0 || params.Limit > store.MaxPageSize {
		params.Limit = store.DefaultPageSize
	}
	params.Offset = max(params.Offset, 0)
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// IndexBook indexes a book with its author's name and genre slugs.
func (s *SearchService) IndexBook(ctx context.Context, book *domain.Book) {
	if s == nil {
		return
	}
	doc, err := s.bookDocument(ctx, book)
	if err == nil {
		err = s.index.IndexDocument(doc)
	}
	if err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
		return
	}
	s.logger.Debug("indexed book", "book_id", book.ID, "title", book.Title)
}

// IndexAuthor indexes an author with their book count.
func (s *SearchService) IndexAuthor(ctx context.Context, a *domain.Author) {
	if s == nil {
		return
	}
	doc, err := s.authorDocument(ctx, a)
	if err == nil {
		err = s.index.IndexDocument(doc)
	}
	if err != nil {
		s.logger.Warn("failed to index author", "author_id", a.ID, "error", err)
		return
	}
	s.logger.Debug("indexed author", "author_id", a.ID, "name", a.Name())
}

// ReindexAuthorBooks refreshes the denormalized author name on an author's books.
func (s *SearchService) ReindexAuthorBooks(ctx context.Context, authorID string) {
	if s == nil {
		return
	}
	ids, err := s.authorBookIDs(ctx, authorID)
	if err != nil {
		s.logger.Warn("failed to list author books for reindex", "author_id", authorID, "error", err)
		return
	}
	s.ReindexBooks(ctx, ids)
}

// ReindexBooks reloads and indexes the given books.
func (s *SearchService) ReindexBooks(ctx context.Context, bookIDs []string) {
	if s == nil {
		return
	}
	for _, bookID := range bookIDs {
		book, err := s.store.GetBook(ctx, bookID)
		if err != nil {
			s.logger.Warn("failed to load book for reindex", "book_id", bookID, "error", err)
			continue
		}
		s.IndexBook(ctx, book)
	}
}

// Remove drops a document from the index.
func (s *SearchService) Remove(docID string) {
	if s == nil {
		return
	}
	if err := s.index.DeleteDocument(docID); err != nil {
		s.logger.Warn("failed to remove search document", "id", docID, "error", err)
	}
}

// Reindex rebuilds the index from the catalog.
func (s *SearchService) Reindex(ctx context.Context) error {
	books, err := s.store.AllBooks(ctx)
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	authors, err := s.store.AllAuthors(ctx)
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(books)+len(authors))
	for _, b := range books {
		doc, err := s.bookDocument(ctx, b)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	for _, a := range authors {
		doc, err := s.authorDocument(ctx, a)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	if err := s.index.Rebuild(); err != nil {
		return err
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return err
	}

	s.logger.Info("search index rebuilt", "books", len(books), "authors", len(authors))
	return nil
}

func (s *SearchService) bookDocument(ctx context.Context, book *domain.Book) (*search.SearchDocument, error) {
	var authorName string
	if book.AuthorID != "" {
		a, err := s.store.GetAuthor(ctx, book.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("get author %s: %w", book.AuthorID, err)
		}
		authorName = a.Name()
	}

	genres, err := s.store.GetGenresByIDs(ctx, book.GenreIDs)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(genres))
	for i, g := range genres {
		slugs[i] = g.Slug
	}

	return search.BookToSearchDocument(book, authorName, slugs), nil
}

func (s *SearchService) authorDocument(ctx context.Context, a *domain.Author) (*search.SearchDocument, error) {
	page, err := s.store.ListBooksByAuthor(ctx, a.ID, store.PaginationParams{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("count books for author %s: %w", a.ID, err)
	}
	return search.AuthorToSearchDocument(a, page.Total), nil
}

// authorBookIDs pages through every book credited to authorID.
func (s *SearchService) authorBookIDs(ctx context.Context, authorID string) ([]string, error) {
	if s == nil {
		return nil, nil
	}
	var ids []string
	params := store.PaginationParams{Limit: store.MaxPageSize}
	for {
		page, err := s.store.ListBooksByAuthor(ctx, authorID, params)
		if err != nil {
			return nil, fmt.Errorf("list author books: %w", err)
		}
		for _, b := range page.Items {
			ids = append(ids, b.ID)
		}
		if !page.HasMore {
			return ids, nil
		}
		params.Cursor = page.NextCursor
	}
}
