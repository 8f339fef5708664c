// Package validation validates request payloads with validator/v10 and reports field-level domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the catalog's custom tags registered:
//
//	date         YYYY-MM-DD calendar date
//	isbn         10 or 13 digits, hyphens allowed, trailing X allowed for ISBN-10
//	shelf_status a copy status other than on_loan
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "path"} {
			if name, _, _ := strings.Cut(fld.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	must(v.RegisterValidation("date", validateDate))
	must(v.RegisterValidation("isbn", validateISBN))
	must(v.RegisterValidation("shelf_status", validateShelfStatus))

	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate validates a struct and returns a domain validation error with per-field details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	msg := "validation failed"
	if len(validationErrs) == 1 {
		e := validationErrs[0]
		msg = e.Field() + " " + fieldErrors[e.Field()]
	}
	return domainerrors.ValidationWithDetails(msg, fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "isbn":
		return "must be a 10 or 13 digit ISBN"
	case "shelf_status":
		return "must be one of: available, maintenance, reserved"
	default:
		return "is invalid"
	}
}

func validateDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := domain.ParseDate(s)
	return err == nil
}

func validateISBN(fl validator.FieldLevel) bool {
	s := strings.ReplaceAll(fl.Field().String(), "-", "")
	switch len(s) {
	case 10:
		for i, r := range s {
			if r >= '0' && r <= '9' {
				continue
			}
			if i == 9 && (r == 'X' || r == 'x') {
				continue
			}
			return false
		}
		return true
	case 13:
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

func validateShelfStatus(fl validator.FieldLevel) bool {
	s := domain.LoanStatus(fl.Field().String())
	if s == "" {
		return true
	}
	return s.Valid() && s != domain.LoanStatusOnLoan
}
