package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
)

// KVMemory is a process-local KVStore, used for development and tests.
type KVMemory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewKVMemory() *KVMemory {
	return &KVMemory{data: make(map[string][]byte)}
}

func (k *KVMemory) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	value, ok := k.data[key]
	if !ok {
		return nil, repositories.ErrKeyNotFound
	}
	return clone(value), nil
}

func (k *KVMemory) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.data[key] = clone(value)
	return nil
}

func (k *KVMemory) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	delete(k.data, key)
	return nil
}

func (k *KVMemory) GetByPrefix(_ context.Context, prefix string) ([]repositories.KVEntry, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	entries := make([]repositories.KVEntry, 0)
	for key, value := range k.data {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, repositories.KVEntry{Key: key, Value: clone(value)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (k *KVMemory) Ping(context.Context) error { return nil }
func (k *KVMemory) Close() error               { return nil }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
