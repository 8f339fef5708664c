package kv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	prefixVisits   = "visits:"
	keyTotalVisits = "visits:_total"

	maxVisitRetries = 5
)

// Visits counts catalog home-page visits per visitor and overall.
type Visits struct {
	store *Store
}

// NewVisits binds visit counters to s.
func NewVisits(s *Store) *Visits {
	return &Visits{store: s}
}

// Record counts a visit by visitorID and returns the visitor's count before this visit.
// The first visit returns 0.
func (v *Visits) Record(ctx context.Context, visitorID string) (int64, error) {
	var before int64
	key := []byte(prefixVisits + visitorID)

	for range maxVisitRetries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		err := v.store.db.Update(func(txn *badger.Txn) error {
			n, err := readCounter(txn, key)
			if err != nil {
				return err
			}
			total, err := readCounter(txn, []byte(keyTotalVisits))
			if err != nil {
				return err
			}
			if err := txn.Set(key, encodeCounter(n+1)); err != nil {
				return err
			}
			before = n
			return txn.Set([]byte(keyTotalVisits), encodeCounter(total+1))
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("record visit: %w", err)
		}
		return before, nil
	}
	return 0, fmt.Errorf("record visit: %w", badger.ErrConflict)
}

// Total returns the number of visits recorded across all visitors.
func (v *Visits) Total(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	err := v.store.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = readCounter(txn, []byte(keyTotalVisits))
		return err
	})
	return n, err
}

func readCounter(txn *badger.Txn, key []byte) (int64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt counter %q", key)
		}
		n = int64(binary.BigEndian.Uint64(val)) //nolint:gosec // written by encodeCounter
		return nil
	})
	return n, err
}

func encodeCounter(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n)) //nolint:gosec // counters are never negative
	return b
}
