package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/locallibrary/catalog-server/internal/api/dto"
	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/store"
)

// renewedLocation is where clients go once a renewal is saved.
const renewedLocation = "/api/v1/books"

func (s *Server) registerLoanRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMyLoans",
		Method:      http.MethodGet,
		Path:        "/api/v1/loans/mine",
		Summary:     "List my loans",
		Description: "Returns copies on loan to the caller, soonest due first, ten per page",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyLoans)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAllLoans",
		Method:      http.MethodGet,
		Path:        "/api/v1/loans",
		Summary:     "List all loans",
		Description: "Returns every copy on loan, soonest due first, ten per page (requires can_mark_returned)",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAllLoans)

	huma.Register(s.api, huma.Operation{
		OperationID: "proposeRenewal",
		Method:      http.MethodGet,
		Path:        "/api/v1/loans/{id}/renew",
		Summary:     "Propose renewal",
		Description: "Returns the loan and the proposed new due date, three weeks from today (requires can_mark_returned)",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProposeRenewal)

	huma.Register(s.api, huma.Operation{
		OperationID: "renewLoan",
		Method:      http.MethodPost,
		Path:        "/api/v1/loans/{id}/renew",
		Summary:     "Renew loan",
		Description: "Sets a new due date on the copy (requires can_mark_returned)",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenewLoan)
}

// === DTOs ===

// ListLoansInput selects a page of loans.
type ListLoansInput struct {
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page"`
}

// LoanListResponse is a page of loans.
type LoanListResponse struct {
	Loans []dto.Loan `json:"loans" doc:"Loans, soonest due first"`
	dto.Page
}

// LoanListOutput wraps the list for Huma.
type LoanListOutput struct {
	Body LoanListResponse
}

// LoanInput identifies a loan by copy ID.
type LoanInput struct {
	ID string `path:"id" doc:"Copy ID (UUID)"`
}

// RenewalProposalResponse is the renewal form's initial state.
type RenewalProposalResponse struct {
	Loan                dto.Loan `json:"loan" doc:"The loan being renewed"`
	ProposedRenewalDate string   `json:"proposed_renewal_date" doc:"Suggested due date (YYYY-MM-DD)"`
}

// RenewalProposalOutput wraps the proposal for Huma.
type RenewalProposalOutput struct {
	Body RenewalProposalResponse
}

// RenewRequest is the renewal form.
type RenewRequest struct {
	RenewalDate string `json:"renewal_date,omitempty" doc:"New due date (YYYY-MM-DD), between today and four weeks ahead"`
}

// RenewInput wraps the renewal form for Huma.
type RenewInput struct {
	ID   string        `path:"id" doc:"Copy ID (UUID)"`
	Body *RenewRequest `required:"false"`
}

// RenewOutput carries the renewed loan and where to go next.
type RenewOutput struct {
	Location string `header:"Location"`
	Body     dto.Loan
}

// === Handlers ===

func (s *Server) handleListMyLoans(ctx context.Context, input *ListLoansInput) (*LoanListOutput, error) {
	page, err := s.services.Loan.ListMyLoans(ctx, currentUser(ctx), input.Cursor)
	if err != nil {
		return nil, err
	}
	return &LoanListOutput{Body: loanList(page)}, nil
}

func (s *Server) handleListAllLoans(ctx context.Context, input *ListLoansInput) (*LoanListOutput, error) {
	page, err := s.services.Loan.ListAllOutstandingLoans(ctx, currentUser(ctx), input.Cursor)
	if err != nil {
		return nil, err
	}
	return &LoanListOutput{Body: loanList(page)}, nil
}

func (s *Server) handleProposeRenewal(ctx context.Context, input *LoanInput) (*RenewalProposalOutput, error) {
	proposal, err := s.services.Loan.ProposeRenewal(ctx, currentUser(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &RenewalProposalOutput{Body: RenewalProposalResponse{
		Loan:                dto.LoanFrom(proposal.Loan),
		ProposedRenewalDate: proposal.ProposedDate,
	}}, nil
}

func (s *Server) handleRenewLoan(ctx context.Context, input *RenewInput) (*RenewOutput, error) {
	var renewalDate string
	if input.Body != nil {
		renewalDate = input.Body.RenewalDate
	}
	loan, err := s.services.Loan.Renew(ctx, currentUser(ctx), input.ID, renewalDate)
	if err != nil {
		return nil, err
	}
	return &RenewOutput{Location: renewedLocation, Body: dto.LoanFrom(loan)}, nil
}

func loanList(page *store.PaginatedResult[*domain.BookInstanceDetail]) LoanListResponse {
	return LoanListResponse{
		Loans: dto.Map(page.Items, dto.LoanFrom),
		Page:  dto.PageOf(page),
	}
}
