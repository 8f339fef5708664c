package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPermissions_ZeroValue(t *testing.T) {
	var perms UserPermissions

	assert.False(t, perms.CanMarkReturned, "zero value CanMarkReturned should be false")
}

func TestUser_HasPermission(t *testing.T) {
	tests := []struct {
		name     string
		user     *User
		expected bool
	}{
		{"granted", &User{Permissions: UserPermissions{CanMarkReturned: true}}, true},
		{"not granted", &User{}, false},
		{"root holds everything", &User{IsRoot: true}, true},
		{"nil user", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.HasPermission(PermCanMarkReturned))
		})
	}
}

func TestUser_UnknownPermission(t *testing.T) {
	u := &User{Permissions: UserPermissions{CanMarkReturned: true}}
	assert.False(t, u.HasPermission(Permission("can_fly")))
}

func TestUser_Name(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).Name())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).Name())
	assert.Equal(t, "ada@example.com", (&User{Email: "ada@example.com"}).Name())
}
