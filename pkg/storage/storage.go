// Package storage is the persistent key-value layer that client state is
// snapshotted into. Keys are owned by exactly one store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("storage: key not found")
	// ErrCorrupt is returned by LoadJSON when the stored bytes cannot be decoded.
	ErrCorrupt = errors.New("storage: corrupt value")
)

// Storage persists opaque values by key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type namespaced struct {
	inner  Storage
	prefix string
}

// Namespace scopes every key of inner under "client:<id>:" so that each
// client owns a private slice of the shared backend.
func Namespace(inner Storage, clientID string) Storage {
	return &namespaced{inner: inner, prefix: "client:" + strings.TrimSpace(clientID) + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, keys ...string) error {
	scoped := make([]string, 0, len(keys))
	for _, key := range keys {
		scoped = append(scoped, n.prefix+key)
	}
	return n.inner.Delete(ctx, scoped...)
}

func (n *namespaced) Ping(ctx context.Context) error {
	return n.inner.Ping(ctx)
}

// LoadJSON decodes the value at key into dest.
func LoadJSON(ctx context.Context, s Storage, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// SaveJSON encodes value and writes it at key.
func SaveJSON(ctx context.Context, s Storage, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
