// Package redisarea stores credential entries in Redis.
//
// Every key is namespaced as "<prefix>:<key>". Entries are written without a
// TTL unless one is configured, which makes the area suitable as the durable
// side of a session manager shared by several processes on one host.
package redisarea

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goAuthClient/storage"
	"github.com/redis/go-redis/v9"
)

// Area is a [storage.Area] backed by Redis.
type Area struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New returns an area that namespaces keys under prefix. A zero ttl keeps
// entries until they are removed.
func New(client redis.UniversalClient, prefix string, ttl time.Duration) *Area {
	if prefix == "" {
		prefix = "gac"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Area{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (a *Area) key(k string) string {
	return a.prefix + ":" + k
}

// Get returns the stored value. A missing key is not an error.
func (a *Area) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := a.redis.Get(ctx, a.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return v, true, nil
}

func (a *Area) Set(ctx context.Context, key, value string) error {
	if err := a.redis.Set(ctx, a.key(key), value, a.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// SetMany writes all entries in one MULTI/EXEC transaction.
func (a *Area) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := a.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, a.key(k), v, a.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

func (a *Area) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = a.key(k)
	}
	if err := a.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Ping reports the round-trip latency to Redis.
func (a *Area) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return time.Since(start), nil
}
