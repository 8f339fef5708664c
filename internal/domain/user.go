package domain

import "time"

// Permission names an action-level grant.
type Permission string

// PermCanMarkReturned lets librarians see all loans, renew them and add copies.
const PermCanMarkReturned Permission = "can_mark_returned"

// UserPermissions holds the action-level permissions of a user.
// All grants default to false.
type UserPermissions struct {
	CanMarkReturned bool `json:"can_mark_returned"`
}

// User is an account that can borrow books and, with permissions, manage loans.
type User struct {
	Syncable
	Email        string          `json:"email"`
	PasswordHash string          `json:"password_hash,omitempty"`
	IsRoot       bool            `json:"is_root"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	LastLoginAt  *time.Time      `json:"last_login_at,omitempty"`
	Permissions  UserPermissions `json:"permissions"`
}

// IsAdmin returns true for the root user, who may manage accounts.
func (u *User) IsAdmin() bool {
	return u.IsRoot
}

// HasPermission reports whether the user holds p. Root holds everything.
func (u *User) HasPermission(p Permission) bool {
	if u == nil {
		return false
	}
	if u.IsRoot {
		return true
	}
	switch p {
	case PermCanMarkReturned:
		return u.Permissions.CanMarkReturned
	}
	return false
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}
