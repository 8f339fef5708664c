package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/locallibrary/catalog-server/internal/store"
)

const indexSegment = "idx:"

// Entity stores JSON values of type T under prefix+id, with optional unique secondary indexes.
// Index entries live under prefix+"idx:"+name+":"+value and hold the id.
type Entity[T any] struct {
	store   *Store
	prefix  string
	ttl     func(*T) time.Duration
	indexes []index[T]
}

type index[T any] struct {
	name string
	keys func(*T) []string
}

// NewEntity creates an entity bucket under prefix, e.g. "session:".
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

// WithIndex adds a unique secondary index.
func (e *Entity[T]) WithIndex(name string, keys func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keys: keys})
	return e
}

// WithTTL makes every write expire after ttl(value). A non-positive duration means no expiry.
func (e *Entity[T]) WithTTL(ttl func(*T) time.Duration) *Entity[T] {
	e.ttl = ttl
	return e
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte(e.prefix + indexSegment + name + ":" + value)
}

func (e *Entity[T]) entry(key, val []byte, v *T) *badger.Entry {
	ent := badger.NewEntry(key, val)
	if e.ttl != nil {
		if d := e.ttl(v); d > 0 {
			ent = ent.WithTTL(d)
		}
	}
	return ent
}

func (e *Entity[T]) load(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s%s: %w", e.prefix, id, err)
	}
	var v T
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &v) }); err != nil {
		return nil, fmt.Errorf("decode %s%s: %w", e.prefix, id, err)
	}
	return &v, nil
}

// write stores v and its index entries, skipping conflict checks for keys in owned.
func (e *Entity[T]) write(txn *badger.Txn, id string, v *T, owned map[string]bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s%s: %w", e.prefix, id, err)
	}

	for _, idx := range e.indexes {
		for _, k := range idx.keys(v) {
			ik := e.indexKey(idx.name, k)
			if !owned[string(ik)] {
				if _, err := txn.Get(ik); err == nil {
					return fmt.Errorf("index %s conflict on %q: %w", idx.name, k, store.ErrAlreadyExists)
				} else if !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
			}
			if err := txn.SetEntry(e.entry(ik, []byte(id), v)); err != nil {
				return err
			}
		}
	}
	return txn.SetEntry(e.entry(e.key(id), data, v))
}

// dropIndexes deletes v's index entries and returns the keys removed.
func (e *Entity[T]) dropIndexes(txn *badger.Txn, v *T) (map[string]bool, error) {
	removed := make(map[string]bool)
	for _, idx := range e.indexes {
		for _, k := range idx.keys(v) {
			ik := e.indexKey(idx.name, k)
			if err := txn.Delete(ik); err != nil {
				return nil, err
			}
			removed[string(ik)] = true
		}
	}
	return removed, nil
}

// Create stores a new value. An existing id or index value returns store.ErrAlreadyExists.
func (e *Entity[T]) Create(ctx context.Context, id string, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.db.Update(func(txn *badger.Txn) error {
		if _, err := e.load(txn, id); err == nil {
			return store.ErrAlreadyExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return e.write(txn, id, v, nil)
	})
}

// Get returns the value stored under id, or store.ErrNotFound.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		v, err := e.load(txn, id)
		out = v
		return err
	})
	return out, err
}

// GetByIndex resolves an index value to its entity.
func (e *Entity[T]) GetByIndex(ctx context.Context, name, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(name, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		out, err = e.load(txn, string(id))
		return err
	})
	return out, err
}

// Update replaces the value under id, moving its index entries.
func (e *Entity[T]) Update(ctx context.Context, id string, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.db.Update(func(txn *badger.Txn) error {
		old, err := e.load(txn, id)
		if err != nil {
			return err
		}
		owned, err := e.dropIndexes(txn, old)
		if err != nil {
			return err
		}
		return e.write(txn, id, v, owned)
	})
}

// Delete removes id and its index entries. Deleting a missing id is not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.db.Update(func(txn *badger.Txn) error {
		old, err := e.load(txn, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := e.dropIndexes(txn, old); err != nil {
			return err
		}
		return txn.Delete(e.key(id))
	})
}

// List iterates every stored value. Index entries are skipped.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := []byte(e.prefix)
		err := e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				item := it.Item()
				if strings.HasPrefix(string(item.Key()[len(prefix):]), indexSegment) {
					continue
				}
				var v T
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &v) }); err != nil {
					return err
				}
				if !yield(&v, nil) {
					return errStop
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(nil, err)
		}
	}
}

var errStop = errors.New("iteration stopped")
