package domain

import (
	"errors"
	"fmt"
	"time"
)

// LoanStatus is the circulation state of a physical copy.
type LoanStatus string

const (
	LoanStatusAvailable   LoanStatus = "available"
	LoanStatusOnLoan      LoanStatus = "on_loan"
	LoanStatusMaintenance LoanStatus = "maintenance"
	LoanStatusReserved    LoanStatus = "reserved"
)

// Valid reports whether s is a known status.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusAvailable, LoanStatusOnLoan, LoanStatusMaintenance, LoanStatusReserved:
		return true
	}
	return false
}

// Label returns the human-readable status name.
func (s LoanStatus) Label() string {
	switch s {
	case LoanStatusAvailable:
		return "Available"
	case LoanStatusOnLoan:
		return "On loan"
	case LoanStatusMaintenance:
		return "Maintenance"
	case LoanStatusReserved:
		return "Reserved"
	default:
		return string(s)
	}
}

var (
	// ErrBorrowerWithoutLoan is returned when a copy has a borrower but is not on loan.
	ErrBorrowerWithoutLoan = errors.New("borrower set on a copy that is not on loan")
	// ErrLoanWithoutBorrower is returned when a copy is on loan with no borrower.
	ErrLoanWithoutBorrower = errors.New("copy on loan has no borrower")
	// ErrUnknownStatus is returned for a status outside LoanStatus.
	ErrUnknownStatus = errors.New("unknown loan status")
)

// BookInstance is a physical copy of a book that can be borrowed.
// Its ID is a UUID.
type BookInstance struct {
	Syncable
	BookID     string     `json:"book_id"`
	Imprint    string     `json:"imprint"`
	DueBack    *time.Time `json:"due_back,omitempty"`
	Status     LoanStatus `json:"status"`
	BorrowerID string     `json:"borrower_id,omitempty"`
}

// Validate checks that the borrower is set exactly when the copy is on loan.
func (bi *BookInstance) Validate() error {
	if !bi.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, bi.Status)
	}
	if bi.Status == LoanStatusOnLoan && bi.BorrowerID == "" {
		return ErrLoanWithoutBorrower
	}
	if bi.Status != LoanStatusOnLoan && bi.BorrowerID != "" {
		return ErrBorrowerWithoutLoan
	}
	return nil
}

// IsOnLoan reports whether the copy is currently borrowed.
func (bi *BookInstance) IsOnLoan() bool {
	return bi.Status == LoanStatusOnLoan
}

// IsOverdue reports whether the copy is on loan and its due date is before today.
func (bi *BookInstance) IsOverdue(today time.Time) bool {
	if !bi.IsOnLoan() || bi.DueBack == nil {
		return false
	}
	return bi.DueBack.Before(DateOf(today))
}

// BookInstanceDetail is a copy with the title of its book resolved, as shown in loan lists.
type BookInstanceDetail struct {
	BookInstance
	BookTitle string `json:"book_title"`
	Overdue   bool   `json:"overdue"`
}
