package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query      string    // User's search query
	Types      []DocType // Empty means all
	GenreSlugs []string  // OR across slugs

	Limit  int
	Offset int

	// "relevance" (default), "name" or "recent"
	SortBy        string
	IncludeFacets bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		IncludeFacets: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Author     string            `json:"author,omitempty"`
	ISBN       string            `json:"isbn,omitempty"`
	BookCount  int               `json:"book_count,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Types  []FacetCount `json:"types,omitempty"`
	Genres []FacetCount `json:"genres,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		req.AddFacet("type", bleve.NewFacetRequest("type", 10))
		req.AddFacet("genre_slugs", bleve.NewFacetRequest("genre_slugs", 20))
	}

	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("name")
	req.Highlight.AddField("author")

	req.Fields = []string{"id", "type", "name", "author", "isbn", "book_count"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			h.Name = n
		}
		if a, ok := hit.Fields["author"].(string); ok {
			h.Author = a
		}
		if i, ok := hit.Fields["isbn"].(string); ok {
			h.ISBN = i
		}
		if bc, ok := hit.Fields["book_count"].(float64); ok {
			h.BookCount = int(bc)
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}
	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
// Free text matches the name (boosted), the denormalized author name, the summary and the ISBN.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(q)
		authorMatch.SetField("author")
		authorMatch.SetBoost(1.5)

		summaryMatch := bleve.NewMatchQuery(q)
		summaryMatch.SetField("summary")
		summaryMatch.SetBoost(0.5)

		isbnMatch := bleve.NewTermQuery(strings.ReplaceAll(q, "-", ""))
		isbnMatch.SetField("isbn")
		isbnMatch.SetBoost(5.0)

		// Typo tolerance on names.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, authorMatch, summaryMatch, isbnMatch, fuzzy}

		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if len(params.GenreSlugs) > 0 {
		genreQueries := make([]query.Query, len(params.GenreSlugs))
		for i, slug := range params.GenreSlugs {
			gq := bleve.NewTermQuery(slug)
			gq.SetField("genre_slugs")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name", "title":
		req.SortBy([]string{"name", "id"})
	case "recent":
		req.SortBy([]string{"-created_at", "id"})
	default:
		req.SortBy([]string{"-_score", "id"})
	}
}

func extractFacets(result *bleve.SearchResult) SearchFacets {
	var facets SearchFacets
	if f, ok := result.Facets["type"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Types = append(facets.Types, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	if f, ok := result.Facets["genre_slugs"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	return facets
}
