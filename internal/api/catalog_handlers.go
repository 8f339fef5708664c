package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/service"
)

const (
	visitorCookie    = "visitor_id"
	visitorCookieAge = 365 * 24 * time.Hour
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "catalogSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/summary",
		Summary:     "Catalog summary",
		Description: "Returns catalog totals and how many times this visitor has been here before",
		Tags:        []string{"Catalog"},
	}, s.handleCatalogSummary)
}

// === DTOs ===

// CatalogSummaryInput carries the visitor cookie.
type CatalogSummaryInput struct {
	VisitorID string `cookie:"visitor_id" doc:"Visitor identifier set by a previous response"`
}

// CatalogSummaryResponse contains catalog totals.
type CatalogSummaryResponse struct {
	NumBooks              int   `json:"num_books" doc:"Number of books"`
	NumInstances          int   `json:"num_instances" doc:"Number of physical copies"`
	NumInstancesAvailable int   `json:"num_instances_available" doc:"Copies on the shelf"`
	NumAuthors            int   `json:"num_authors" doc:"Number of authors"`
	NumGenres             int   `json:"num_genres" doc:"Number of genres"`
	NumVisits             int64 `json:"num_visits" doc:"Earlier visits by this visitor"`
}

// CatalogSummaryOutput wraps the summary and sets the visitor cookie.
type CatalogSummaryOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      CatalogSummaryResponse
}

// === Handlers ===

func (s *Server) handleCatalogSummary(ctx context.Context, input *CatalogSummaryInput) (*CatalogSummaryOutput, error) {
	visitorID := input.VisitorID
	if visitorID == "" {
		generated, err := id.Generate("visitor")
		if err != nil {
			return nil, err
		}
		visitorID = generated
	}

	summary, err := s.services.Summary.Summary(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	return &CatalogSummaryOutput{
		SetCookie: visitorCookieFor(visitorID),
		Body:      summaryResponse(summary),
	}, nil
}

func visitorCookieFor(visitorID string) http.Cookie {
	return http.Cookie{
		Name:     visitorCookie,
		Value:    visitorID,
		Path:     "/",
		MaxAge:   int(visitorCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func summaryResponse(s *service.CatalogSummary) CatalogSummaryResponse {
	return CatalogSummaryResponse{
		NumBooks:              s.Books,
		NumInstances:          s.Instances,
		NumInstancesAvailable: s.InstancesAvailable,
		NumAuthors:            s.Authors,
		NumGenres:             s.Genres,
		NumVisits:             s.NumVisits,
	}
}
