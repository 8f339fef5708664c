package domain

import "time"

// Syncable carries the identity and bookkeeping timestamps shared by catalog records.
// UpdatedAt doubles as the optimistic-concurrency marker for writes.
type Syncable struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// Touch updates UpdatedAt to the current time.
func (s *Syncable) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (s *Syncable) InitTimestamps() {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
}
