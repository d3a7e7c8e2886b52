package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by KVStore.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// KVEntry is a key with its raw stored value.
type KVEntry struct {
	Key   string
	Value []byte
}

// KVStore is the persistence contract of the service: a flat key/value
// namespace with prefix scan. Writes are last-write-wins per key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// GetByPrefix returns all entries whose key starts with prefix, ordered by key.
	GetByPrefix(ctx context.Context, prefix string) ([]KVEntry, error)
	Ping(ctx context.Context) error
	Close() error
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError checks if err came from the store itself
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// getJSON loads key into dest. It returns ErrNotFound for absent keys.
func getJSON(ctx context.Context, store KVStore, key string, dest interface{}) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return ErrNotFound
		}
		return &StorageError{Op: "get", Key: key, Err: err}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &StorageError{Op: "decode", Key: key, Err: err}
	}
	return nil
}

func setJSON(ctx context.Context, store KVStore, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func deleteKey(ctx context.Context, store KVStore, key string) error {
	if err := store.Delete(ctx, key); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// scanJSON decodes every value under prefix with decode.
func scanJSON(ctx context.Context, store KVStore, prefix string, decode func(raw []byte) error) error {
	entries, err := store.GetByPrefix(ctx, prefix)
	if err != nil {
		return &StorageError{Op: "scan", Key: prefix, Err: err}
	}
	for _, entry := range entries {
		if err := decode(entry.Value); err != nil {
			return &StorageError{Op: "decode", Key: entry.Key, Err: err}
		}
	}
	return nil
}
