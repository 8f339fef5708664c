package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/locallibrary/catalog-server/internal/store/kv"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// SummaryService builds the catalog home page figures.
type SummaryService struct {
	store  *sqlite.Store
	visits *kv.Visits
	logger *slog.Logger
}

// NewSummaryService creates a new summary service.
func NewSummaryService(store *sqlite.Store, visits *kv.Visits, logger *slog.Logger) *SummaryService {
	return &SummaryService{store: store, visits: visits, logger: logger}
}

// CatalogSummary holds catalog totals and how often this visitor has been here before.
type CatalogSummary struct {
	sqlite.CatalogCounts
	NumVisits int64 `json:"num_visits"`
}

// Summary returns catalog totals and records a visit by visitorID.
// NumVisits counts earlier visits, so a first visit reports 0.
func (s *SummaryService) Summary(ctx context.Context, visitorID string) (*CatalogSummary, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}

	summary := &CatalogSummary{CatalogCounts: *counts}
	if visitorID == "" {
		return summary, nil
	}

	n, err := s.visits.Record(ctx, visitorID)
	if err != nil {
		// The counter is cosmetic; the totals still go out.
		s.logger.Warn("failed to record visit", "error", err)
		return summary, nil
	}
	summary.NumVisits = n
	return summary, nil
}

// TotalVisits returns the number of visits across all visitors.
func (s *SummaryService) TotalVisits(ctx context.Context) (int64, error) {
	n, err := s.visits.Total(ctx)
	if err != nil {
		return 0, fmt.Errorf("total visits: %w", err)
	}
	return n, nil
}
