package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookInstance_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bi      BookInstance
		wantErr error
	}{
		{"on loan with borrower", BookInstance{Status: LoanStatusOnLoan, BorrowerID: "usr-1"}, nil},
		{"available without borrower", BookInstance{Status: LoanStatusAvailable}, nil},
		{"on loan without borrower", BookInstance{Status: LoanStatusOnLoan}, ErrLoanWithoutBorrower},
		{"reserved with borrower", BookInstance{Status: LoanStatusReserved, BorrowerID: "usr-1"}, ErrBorrowerWithoutLoan},
		{"unknown status", BookInstance{Status: "lost"}, ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bi.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBookInstance_IsOverdue(t *testing.T) {
	due := day("2024-03-10")
	bi := &BookInstance{Status: LoanStatusOnLoan, BorrowerID: "usr-1", DueBack: &due}

	assert.False(t, bi.IsOverdue(day("2024-03-10")))
	assert.True(t, bi.IsOverdue(day("2024-03-11")))

	bi.Status = LoanStatusAvailable
	bi.BorrowerID = ""
	assert.False(t, bi.IsOverdue(day("2024-03-11")))
}

func TestLoanStatus_Label(t *testing.T) {
	assert.Equal(t, "On loan", LoanStatusOnLoan.Label())
	assert.Equal(t, "Maintenance", LoanStatusMaintenance.Label())
}
