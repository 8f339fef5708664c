package kv

import (
	"context"
	"time"

	"github.com/locallibrary/catalog-server/internal/domain"
)

const (
	prefixSession = "session:"
	indexToken    = "token"
)

// Sessions stores refresh-token sessions, indexed by token hash.
// Entries expire on their own at ExpiresAt.
type Sessions struct {
	entity *Entity[domain.Session]
}

// NewSessions binds session storage to s.
func NewSessions(s *Store) *Sessions {
	e := NewEntity[domain.Session](s, prefixSession).
		WithIndex(indexToken, func(sess *domain.Session) []string {
			return []string{sess.RefreshTokenHash}
		}).
		WithTTL(func(sess *domain.Session) time.Duration {
			return time.Until(sess.ExpiresAt)
		})
	return &Sessions{entity: e}
}

// Create stores a new session.
func (s *Sessions) Create(ctx context.Context, sess *domain.Session) error {
	return s.entity.Create(ctx, sess.ID, sess)
}

// Get returns a session by id.
func (s *Sessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.entity.Get(ctx, id)
}

// GetByTokenHash returns the session holding a refresh token hash.
func (s *Sessions) GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	return s.entity.GetByIndex(ctx, indexToken, hash)
}

// Update replaces a session, e.g. after rotating its refresh token.
func (s *Sessions) Update(ctx context.Context, sess *domain.Session) error {
	return s.entity.Update(ctx, sess.ID, sess)
}

// Delete removes a session.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.entity.Delete(ctx, id)
}

// DeleteForUser removes every session belonging to userID and returns how many were removed.
func (s *Sessions) DeleteForUser(ctx context.Context, userID string) (int, error) {
	var ids []string
	for sess, err := range s.entity.List(ctx) {
		if err != nil {
			return 0, err
		}
		if sess.UserID == userID {
			ids = append(ids, sess.ID)
		}
	}
	for _, id := range ids {
		if err := s.entity.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
