package service

import (
	"context"
	"log/slog"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// CopyService adds physical copies of books to the catalog.
// Putting a copy on loan happens at the circulation desk, outside this service.
type CopyService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewCopyService creates a new copy service.
func NewCopyService(store *sqlite.Store, logger *slog.Logger) *CopyService {
	return &CopyService{store: store, logger: logger}
}

// CreateCopyRequest describes a new copy. Status defaults to available and may not be on_loan.
type CreateCopyRequest struct {
	Imprint string `json:"imprint" validate:"required,max=200"`
	Status  string `json:"status,omitempty" validate:"omitempty,shelf_status"`
}

// CreateCopy adds a copy of bookID. Requires can_mark_returned.
func (s *CopyService) CreateCopy(ctx context.Context, actor *domain.User, bookID string, req CreateCopyRequest) (*domain.BookInstance, error) {
	if err := requirePermission(actor, domain.PermCanMarkReturned); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, storeError(err, "book")
	}

	status := domain.LoanStatus(req.Status)
	if status == "" {
		status = domain.LoanStatusAvailable
	}

	bi := &domain.BookInstance{
		BookID:  bookID,
		Imprint: req.Imprint,
		Status:  status,
	}
	bi.ID = id.NewInstanceID()
	bi.InitTimestamps()
	if err := bi.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateInstance(ctx, bi); err != nil {
		return nil, storeError(err, "copy")
	}

	s.logger.Info("copy added", "copy_id", bi.ID, "book_id", bookID, "status", bi.Status, "user_id", actor.ID)
	return bi, nil
}
