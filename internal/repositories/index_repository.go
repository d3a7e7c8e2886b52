package repositories

import (
	"context"

	"github.com/SAP-F-2025/tutoring-service/internal/utils"
)

// IndexRepository manages id lists stored under a single key, such as the
// pending-tutor and pending-review indexes.
type IndexRepository interface {
	Get(ctx context.Context, key string) ([]string, error)
	// Append adds id to the end of the list, duplicates allowed.
	Append(ctx context.Context, key, id string) error
	// AppendUnique adds id unless it is already present.
	AppendUnique(ctx context.Context, key, id string) error
	// Remove drops every occurrence of id; absent ids are a no-op.
	Remove(ctx context.Context, key, id string) error
	Contains(ctx context.Context, key, id string) (bool, error)
}

type indexRepository struct {
	store KVStore
	locks *utils.KeyedMutex
}

func (r *indexRepository) Get(ctx context.Context, key string) ([]string, error) {
	var ids []string
	if err := getJSON(ctx, r.store, key, &ids); err != nil {
		if IsNotFoundError(err) {
			return []string{}, nil
		}
		return nil, err
	}
	return ids, nil
}

func (r *indexRepository) Append(ctx context.Context, key, id string) error {
	return r.update(ctx, key, func(ids []string) ([]string, bool) {
		return append(ids, id), true
	})
}

func (r *indexRepository) AppendUnique(ctx context.Context, key, id string) error {
	return r.update(ctx, key, func(ids []string) ([]string, bool) {
		for _, existing := range ids {
			if existing == id {
				return ids, false
			}
		}
		return append(ids, id), true
	})
}

func (r *indexRepository) Remove(ctx context.Context, key, id string) error {
	return r.update(ctx, key, func(ids []string) ([]string, bool) {
		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		return kept, len(kept) != len(ids)
	})
}

func (r *indexRepository) Contains(ctx context.Context, key, id string) (bool, error) {
	ids, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

// update applies fn under the per-key lock and writes only when fn reports a change.
func (r *indexRepository) update(ctx context.Context, key string, fn func([]string) ([]string, bool)) error {
	unlock := r.locks.Lock(key)
	defer unlock()

	ids, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	next, changed := fn(ids)
	if !changed {
		return nil
	}
	return setJSON(ctx, r.store, key, next)
}
