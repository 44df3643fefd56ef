package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/errors"
)

// Entity provides generic CRUD operations for a domain type stored
// under a key prefix, with optional unique secondary indexes.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []index[T]
}

// index is a secondary index. keyGen produces the index key suffixes
// for an entity; lookup optionally normalizes search values so lookups
// match what keyGen produced (e.g. case-insensitive email).
type index[T any] struct {
	name   string
	keyGen func(*T) []string
	lookup func(string) string
}

// NewEntity creates an entity registry for type T under the given prefix.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

// WithIndex adds a secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keyGen: keyGen})
	return e
}

// WithIndexTransform adds a secondary index whose lookup values are
// normalized through transform before matching.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, transform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keyGen: keyGen, lookup: transform})
	return e
}

// Prefix returns the key prefix for this entity.
func (e *Entity[T]) Prefix() string {
	return e.prefix
}

func (e *Entity[T]) indexKey(name, suffix string) string {
	return e.prefix + "idx:" + name + ":" + suffix
}

// indexKeysFor returns every fully-qualified index key the entity
// occupies.
func (e *Entity[T]) indexKeysFor(entity *T) []string {
	var keys []string
	for _, idx := range e.indexes {
		for _, suffix := range idx.keyGen(entity) {
			keys = append(keys, e.indexKey(idx.name, suffix))
		}
	}
	return keys
}

// checkIndexConflicts returns ErrAlreadyExists if any of the given
// index keys is already taken, unless the key appears in skip.
func checkIndexConflicts(txn *badger.Txn, keys []string, skip map[string]bool) error {
	for _, key := range keys {
		if skip[key] {
			continue
		}
		_, err := txn.Get([]byte(key))
		if err == nil {
			return errors.ErrAlreadyExists.WithDetails(map[string]string{"index": key})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check index key: %w", err)
		}
	}
	return nil
}

// Create stores a new entity under id.
// Returns ErrAlreadyExists if the ID or any index key is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	key := []byte(e.prefix + id)
	idxKeys := e.indexKeysFor(entity)

	return e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return errors.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := checkIndexConflicts(txn, idxKeys, nil); err != nil {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		for _, k := range idxKeys {
			if err := txn.Set([]byte(k), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
		return nil
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(e.prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex retrieves an entity through a secondary index. The
// index's lookup transform, if any, is applied to value first.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookup != nil {
			value = idx.lookup(value)
			break
		}
	}

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(e.indexKey(indexName, value)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return e.Get(ctx, id)
}

// Update replaces an existing entity, moving its index entries.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	key := []byte(e.prefix + id)
	newIdxKeys := e.indexKeysFor(entity)

	return e.store.db.Update(func(txn *badger.Txn) error {
		var old T
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		}); err != nil {
			return err
		}

		oldIdxKeys := e.indexKeysFor(&old)
		oldSet := make(map[string]bool, len(oldIdxKeys))
		for _, k := range oldIdxKeys {
			oldSet[k] = true
		}

		if err := checkIndexConflicts(txn, newIdxKeys, oldSet); err != nil {
			return err
		}

		for _, k := range oldIdxKeys {
			if err := txn.Delete([]byte(k)); err != nil {
				return fmt.Errorf("failed to delete old index key: %w", err)
			}
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		for _, k := range newIdxKeys {
			if err := txn.Set([]byte(k), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
		return nil
	})
}

// Delete removes an entity and its index entries. Idempotent.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(e.prefix + id)

	return e.store.db.Update(func(txn *badger.Txn) error {
		var entity T
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		}); err != nil {
			return err
		}

		for _, k := range e.indexKeysFor(&entity) {
			if err := txn.Delete([]byte(k)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
		return txn.Delete(key)
	})
}

// List returns an iterator over all entities under the prefix.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := []byte(e.prefix)
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return err
				}

				// Index keys live under the same prefix; skip them.
				if strings.HasPrefix(string(it.Item().Key())[len(e.prefix):], "idx:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}
				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// GetAllByIndexPrefix retrieves all entities whose index key under
// indexName starts with prefix. Entries whose primary record has gone
// missing are skipped.
func (e *Entity[T]) GetAllByIndexPrefix(ctx context.Context, indexName, prefix string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanPrefix := []byte(e.indexKey(indexName, prefix))
	var ids []string

	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entities := make([]*T, 0, len(ids))
	for _, id := range ids {
		entity, err := e.Get(ctx, id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
