package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/validation"
)

type bookRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	ISBN  string `json:"isbn" validate:"required,isbn"`
}

type copyRequest struct {
	Imprint string `json:"imprint" validate:"required"`
	DueBack string `json:"due_back,omitempty" validate:"omitempty,date"`
	Status  string `json:"status,omitempty" validate:"omitempty,shelf_status"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
	d, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	return d
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(bookRequest{Title: "Dune", ISBN: "978-0441172719"}))
	assert.NoError(t, v.Validate(copyRequest{Imprint: "Ace, 1990", DueBack: "2024-05-01", Status: "maintenance"}))
	assert.NoError(t, v.Validate(loginRequest{Email: "a@example.com", Password: "password123"}))
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := validation.New()

	d := details(t, v.Validate(bookRequest{ISBN: "0441172717"}))
	assert.Equal(t, "is required", d["title"])
}

func TestValidator_SingleErrorMessage(t *testing.T) {
	v := validation.New()

	err := v.Validate(loginRequest{Email: "not-an-email", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, "email must be a valid email address", err.Error())
}

func TestValidator_ISBN(t *testing.T) {
	v := validation.New()

	tests := []struct {
		isbn  string
		valid bool
	}{
		{"0441172717", true},
		{"080442957X", true},
		{"9780441172719", true},
		{"978-0-441-17271-9", true},
		{"12345", false},
		{"97804411727AB", false},
		{"X441172717", false},
	}

	for _, tt := range tests {
		t.Run(tt.isbn, func(t *testing.T) {
			err := v.Validate(bookRequest{Title: "t", ISBN: tt.isbn})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, "must be a 10 or 13 digit ISBN", details(t, err)["isbn"])
			}
		})
	}
}

func TestValidator_ShelfStatusRejectsOnLoan(t *testing.T) {
	v := validation.New()

	d := details(t, v.Validate(copyRequest{Imprint: "x", Status: "on_loan"}))
	assert.Contains(t, d, "status")

	d = details(t, v.Validate(copyRequest{Imprint: "x", Status: "lost"}))
	assert.Contains(t, d, "status")
}

func TestValidator_Date(t *testing.T) {
	v := validation.New()

	d := details(t, v.Validate(copyRequest{Imprint: "x", DueBack: "01/05/2024"}))
	assert.Equal(t, "must be a date in YYYY-MM-DD format", d["due_back"])
}

func TestValidator_MultipleErrors(t *testing.T) {
	v := validation.New()

	err := v.Validate(copyRequest{DueBack: "bad", Status: "on_loan"})
	require.Error(t, err)
	assert.Equal(t, "validation failed", err.Error())
	assert.Len(t, details(t, err), 3)
}
