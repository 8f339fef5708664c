package domain

import "time"

// Author is a person credited with one or more books.
type Author struct {
	Syncable
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
}

// Name returns the author's display name, "Last, First".
func (a *Author) Name() string {
	switch {
	case a.LastName == "":
		return a.FirstName
	case a.FirstName == "":
		return a.LastName
	default:
		return a.LastName + ", " + a.FirstName
	}
}

// FullName returns "First Last".
func (a *Author) FullName() string {
	switch {
	case a.LastName == "":
		return a.FirstName
	case a.FirstName == "":
		return a.LastName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// LifespanValid reports whether the death date, if any, is not before the birth date.
func (a *Author) LifespanValid() bool {
	if a.DateOfBirth == nil || a.DateOfDeath == nil {
		return true
	}
	return !a.DateOfDeath.Before(*a.DateOfBirth)
}
