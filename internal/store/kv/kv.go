// Package kv is the badger-backed key-value store for login sessions and visit counters.
package kv

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a badger database.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the badger directory at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	return open(badger.DefaultOptions(path), logger)
}

// OpenInMemory opens a store that lives only in memory. Used by tests.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	// Badger's own logger is noisy at info.
	opts = opts.WithLogger(nil).WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC reclaims value-log space. It returns nil when there was nothing to collect.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if err == badger.ErrNoRewrite || err == badger.ErrRejected {
		return nil
	}
	return err
}
