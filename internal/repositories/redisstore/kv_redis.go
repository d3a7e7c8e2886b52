package redisstore

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	goredis "github.com/redis/go-redis/v9"
)

const scanBatch = 200

type KVRedis struct {
	client *goredis.Client
	// namespace is prepended to every key so several deployments can share a database.
	namespace string
}

func NewKVRedis(client *goredis.Client, namespace string) *KVRedis {
	return &KVRedis{client: client, namespace: namespace}
}

func (k *KVRedis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := k.client.Get(ctx, k.namespace+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repositories.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (k *KVRedis) Set(ctx context.Context, key string, value []byte) error {
	return k.client.Set(ctx, k.namespace+key, value, 0).Err()
}

func (k *KVRedis) Delete(ctx context.Context, key string) error {
	return k.client.Del(ctx, k.namespace+key).Err()
}

func (k *KVRedis) GetByPrefix(ctx context.Context, prefix string) ([]repositories.KVEntry, error) {
	var keys []string
	iter := k.client.Scan(ctx, 0, escapeGlob(k.namespace+prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []repositories.KVEntry{}, nil
	}
	keys = uniqueSorted(keys)

	entries := make([]repositories.KVEntry, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		values, err := k.client.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			// Keys deleted between SCAN and MGET come back nil.
			s, ok := v.(string)
			if !ok {
				continue
			}
			entries = append(entries, repositories.KVEntry{
				Key:   keys[start+i][len(k.namespace):],
				Value: []byte(s),
			})
		}
	}
	return entries, nil
}

func (k *KVRedis) Ping(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}

func (k *KVRedis) Close() error {
	return k.client.Close()
}

// uniqueSorted orders scanned keys and drops repeats; SCAN may yield a key more than once.
func uniqueSorted(keys []string) []string {
	sort.Strings(keys)
	return slices.Compact(keys)
}

func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
