package domain

import (
	"errors"
	"time"
)

const (
	// RenewalProposalDays is how far ahead of today a renewal is proposed.
	RenewalProposalDays = 21
	// RenewalMaxWeeks bounds how far ahead a renewal may be set when the window is enforced.
	RenewalMaxWeeks = 4
	// LoansPageSize is the page size of both loan listings.
	LoansPageSize = 10
)

var (
	// ErrRenewalInPast rejects a renewal date before today.
	ErrRenewalInPast = errors.New("Invalid date - renewal in past")
	// ErrRenewalTooFar rejects a renewal date beyond the renewal window.
	ErrRenewalTooFar = errors.New("Invalid date - renewal more than 4 weeks ahead")
)

// ProposedRenewalDate returns the default renewal date offered for a loan.
func ProposedRenewalDate(today time.Time) time.Time {
	return DateOf(today).AddDate(0, 0, RenewalProposalDays)
}

// CheckRenewalDate validates a requested due date against today.
// When enforce is false any date is accepted.
func CheckRenewalDate(requested, today time.Time, enforce bool) error {
	if !enforce {
		return nil
	}
	day := DateOf(today)
	req := DateOf(requested)
	if req.Before(day) {
		return ErrRenewalInPast
	}
	if req.After(day.AddDate(0, 0, 7*RenewalMaxWeeks)) {
		return ErrRenewalTooFar
	}
	return nil
}

// Renew sets a new due date on the copy. Status and borrower are untouched.
func (bi *BookInstance) Renew(due time.Time) {
	d := DateOf(due)
	bi.DueBack = &d
	bi.Touch()
}
