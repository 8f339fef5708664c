// Package id generates identifiers for catalog records.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed NanoID, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewInstanceID returns a random UUID for a physical book copy.
// Copies are identified by UUID so their ids can be printed on labels and
// do not reveal how many copies the library holds.
func NewInstanceID() string {
	return uuid.NewString()
}

// IsInstanceID reports whether s parses as a copy UUID.
func IsInstanceID(s string) bool {
	return uuid.Validate(s) == nil
}
