package memory

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewKVMemory()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrKeyNotFound)

	value := []byte(`{"a":1}`)
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, repositories.ErrKeyNotFound)
}

func TestKVMemory_GetByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewKVMemory()

	for _, key := range []string{"review:b", "reviews:pending", "review:a", "user:1", "review:c"} {
		require.NoError(t, store.Set(ctx, key, []byte(key)))
	}

	entries, err := store.GetByPrefix(ctx, "review:")
	require.NoError(t, err)
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		assert.Equal(t, e.Key, string(e.Value))
	}
	assert.Equal(t, []string{"review:a", "review:b", "review:c"}, keys)

	entries, err = store.GetByPrefix(ctx, "nothing:")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
