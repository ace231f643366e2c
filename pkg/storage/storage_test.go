package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the behavior every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart", []byte(`[{"id":"1"}]`)))
	got, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, s.Set(ctx, "cart", []byte(`[]`)))
	got, err = s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, s.Set(ctx, "token", []byte("abc")))
	require.NoError(t, s.Delete(ctx, "cart", "token", "never-set"))
	_, err = s.Get(ctx, "cart")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "token")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'z'

	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestNamespaceIsolatesClients(t *testing.T) {
	ctx := context.Background()
	shared := NewMemory()
	a := Namespace(shared, "a")
	b := Namespace(shared, "b")

	require.NoError(t, a.Set(ctx, "cart", []byte("A")))
	require.NoError(t, b.Set(ctx, "cart", []byte("B")))

	got, err := a.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "A", string(got))

	require.NoError(t, b.Delete(ctx, "cart"))
	_, err = b.Get(ctx, "cart")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = a.Get(ctx, "cart")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"client:a:cart"}, shared.Keys())
	exerciseStorage(t, Namespace(NewMemory(), "contract"))
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var dest []string
	err := LoadJSON(ctx, m, "list", &dest)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SaveJSON(ctx, m, "list", []string{"a", "b"}))
	require.NoError(t, LoadJSON(ctx, m, "list", &dest))
	assert.Equal(t, []string{"a", "b"}, dest)

	require.NoError(t, m.Set(ctx, "list", []byte("{not json")))
	err = LoadJSON(ctx, m, "list", &dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestSaveJSONRejectsUnencodable(t *testing.T) {
	err := SaveJSON(context.Background(), NewMemory(), "bad", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
