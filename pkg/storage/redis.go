package storage

import (
	"context"
	"time"

	redisclient "github.com/goldstore/storefront/pkg/redis"
)

// Redis stores snapshots under the "gs:state:" namespace. With a ttl, every
// read or write pushes the entry's expiry out, so only abandoned client
// state ages out.
type Redis struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedis returns a Redis-backed Storage. A zero ttl keeps values until deleted.
func NewRedis(client *redisclient.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	scoped := r.client.StateKey(key)
	v, err := r.client.Get(ctx, scoped)
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.client.Touch(ctx, scoped, r.ttl); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.StateKey(key), value, r.ttl)
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	scoped := make([]string, 0, len(keys))
	for _, key := range keys {
		scoped = append(scoped, r.client.StateKey(key))
	}
	return r.client.Del(ctx, scoped...)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
