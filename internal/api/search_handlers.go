package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	if s.services.Search == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search across books and authors",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query      string `query:"q" maxLength:"200" doc:"Search query. Empty matches everything."`
	Types      string `query:"types" maxLength:"100" doc:"Comma-separated types to search (book,author). Omit for all."`
	GenreSlugs string `query:"genres" maxLength:"200" doc:"Comma-separated genre slugs to filter by"`
	Sort       string `query:"sort" enum:"relevance,name,recent" default:"relevance" doc:"Result order"`
	Limit      int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset     int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	Facets     bool   `query:"facets" doc:"Include facets in response"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.SearchParams{
		Query:         input.Query,
		GenreSlugs:    splitList(input.GenreSlugs),
		Limit:         input.Limit,
		Offset:        input.Offset,
		SortBy:        input.Sort,
		IncludeFacets: input.Facets,
	}

	for _, t := range splitList(input.Types) {
		switch search.DocType(t) {
		case search.DocTypeBook, search.DocTypeAuthor:
			params.Types = append(params.Types, search.DocType(t))
		}
	}

	s.logger.Debug("search request received",
		"query", input.Query,
		"types", params.Types,
		"limit", input.Limit,
	)

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", input.Query)
		return nil, err
	}

	return &SearchOutput{Body: result}, nil
}

// splitList parses a comma-separated query value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for v := range strings.SplitSeq(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
