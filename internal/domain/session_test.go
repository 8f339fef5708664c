package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsExpired(t *testing.T) {
	s := &Session{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, s.IsExpired())

	s.ExpiresAt = time.Now().Add(time.Hour)
	assert.False(t, s.IsExpired())
}

func TestSession_Touch(t *testing.T) {
	s := &Session{}
	s.Touch()
	assert.False(t, s.LastSeenAt.IsZero())
}
