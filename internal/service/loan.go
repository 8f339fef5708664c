package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// LoanService renews loans and lists copies on loan.
type LoanService struct {
	store         *sqlite.Store
	logger        *slog.Logger
	enforceWindow bool
	now           Clock
}

// NewLoanService creates a loan service. With enforceWindow set, renewal dates
// must fall between today and RenewalMaxWeeks from today.
func NewLoanService(store *sqlite.Store, enforceWindow bool, logger *slog.Logger) *LoanService {
	return &LoanService{
		store:         store,
		logger:        logger,
		enforceWindow: enforceWindow,
		now:           systemClock,
	}
}

// WithClock replaces the service's clock. Used by tests.
func (s *LoanService) WithClock(c Clock) *LoanService {
	s.now = c
	return s
}

// RenewalProposal is what a librarian sees before renewing: the loan and the suggested date.
type RenewalProposal struct {
	Loan         *domain.BookInstanceDetail `json:"loan"`
	ProposedDate string                     `json:"proposed_renewal_date"`
}

// ProposeRenewal returns the loan with a renewal date three weeks from today.
// The proposal is never applied on its own.
func (s *LoanService) ProposeRenewal(ctx context.Context, actor *domain.User, loanID string) (*RenewalProposal, error) {
	if err := requirePermission(actor, domain.PermCanMarkReturned); err != nil {
		return nil, err
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	proposed := domain.ProposedRenewalDate(s.now())
	return &RenewalProposal{
		Loan:         loan,
		ProposedDate: proposed.Format(domain.DateLayout),
	}, nil
}

// Renew sets a new due date on a loan.
//
// Checks run in a fixed order: permission, then lookup, then the date.
// Only due_back and updated_at change. The write is conditional on the loan
// still carrying the updated_at that was read, so a concurrent change yields a
// Conflict instead of being overwritten.
func (s *LoanService) Renew(ctx context.Context, actor *domain.User, loanID, renewalDate string) (*domain.BookInstanceDetail, error) {
	if err := requirePermission(actor, domain.PermCanMarkReturned); err != nil {
		return nil, err
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if renewalDate == "" {
		return nil, domainerrors.FieldValidation("renewal_date", "This field is required.")
	}
	due, err := domain.ParseDate(renewalDate)
	if err != nil {
		return nil, domainerrors.FieldValidation("renewal_date", "Enter a valid date.")
	}

	now := s.now()
	if err := domain.CheckRenewalDate(due, now, s.enforceWindow); err != nil {
		return nil, domainerrors.FieldValidation("renewal_date", err.Error())
	}

	if err := s.store.UpdateDueBack(ctx, loan.ID, due, loan.UpdatedAt, now); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
			return nil, storeError(err, "loan")
		}
		return nil, fmt.Errorf("renew loan: %w", err)
	}

	s.logger.Info("loan renewed",
		"loan_id", loan.ID,
		"due_back", due.Format(domain.DateLayout),
		"previous_due_back", domain.FormatDate(loan.DueBack),
		"renewed_by", actor.ID,
	)

	renewed, err := s.getLoan(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	return renewed, nil
}

// ListMyLoans returns the caller's copies on loan, soonest due first, ten per page.
func (s *LoanService) ListMyLoans(ctx context.Context, actor *domain.User, cursor string) (*store.PaginatedResult[*domain.BookInstanceDetail], error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return s.listLoans(ctx, sqlite.LoanFilter{BorrowerID: actor.ID}, cursor)
}

// ListAllOutstandingLoans returns every copy on loan, soonest due first, ten per page.
func (s *LoanService) ListAllOutstandingLoans(ctx context.Context, actor *domain.User, cursor string) (*store.PaginatedResult[*domain.BookInstanceDetail], error) {
	if err := requirePermission(actor, domain.PermCanMarkReturned); err != nil {
		return nil, err
	}
	return s.listLoans(ctx, sqlite.LoanFilter{}, cursor)
}

func (s *LoanService) listLoans(ctx context.Context, filter sqlite.LoanFilter, cursor string) (*store.PaginatedResult[*domain.BookInstanceDetail], error) {
	page, err := s.store.ListLoans(ctx, filter, store.PaginationParams{Limit: domain.LoansPageSize, Cursor: cursor})
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.Validation("invalid cursor").WithCause(err)
		}
		return nil, fmt.Errorf("list loans: %w", err)
	}
	markOverdue(page.Items, s.now())
	return page, nil
}

func (s *LoanService) getLoan(ctx context.Context, id string) (*domain.BookInstanceDetail, error) {
	loan, err := s.store.GetInstance(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, storeError(err, "loan")
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	loan.Overdue = loan.IsOverdue(s.now())
	return loan, nil
}

func markOverdue(loans []*domain.BookInstanceDetail, today time.Time) {
	for _, l := range loans {
		l.Overdue = l.IsOverdue(today)
	}
}
