package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locallibrary/catalog-server/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	err := store.ErrNotFound.WithCause(errors.New("no rows"))

	assert.Contains(t, err.Error(), "resource not found")
	assert.Contains(t, err.Error(), "no rows")
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_IsSentinel(t *testing.T) {
	wrapped := fmt.Errorf("get loan: %w", store.ErrConflict.WithCause(errors.New("stale")))

	assert.ErrorIs(t, wrapped, store.ErrConflict)
	assert.NotErrorIs(t, wrapped, store.ErrAlreadyExists)
}
