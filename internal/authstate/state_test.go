package authstate

import (
	"context"
	"testing"

	"github.com/goldstore/storefront/pkg/enums"
	"github.com/goldstore/storefront/pkg/storage"
	"github.com/goldstore/storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(role enums.Role) types.User {
	return types.User{ID: "42", Name: "Ana", Email: "ana@goldstore.test", Role: role}
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewState(ctx, mem, Options{})
	assert.False(t, s.IsAuthenticated())

	s.Login(ctx, "opaque-token", testUser(enums.RoleCustomer))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "opaque-token", s.Token())
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "Ana", user.Name)

	raw, err := mem.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", string(raw))

	s.Logout(ctx)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	_, err = mem.Get(ctx, "token")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = mem.Get(ctx, "user")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRehydratesPersistedIdentity(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	NewState(ctx, mem, Options{TokenKey: "tk", UserKey: "usr"}).Login(ctx, "tok", testUser(enums.RoleAdmin))

	s := NewState(ctx, mem, Options{TokenKey: "tk", UserKey: "usr"})
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok", s.Token())
	user, _ := s.User()
	assert.Equal(t, enums.RoleAdmin, user.Role)
	assert.Equal(t, types.FlexID("42"), user.ID)
}

func TestCorruptUserSnapshotIsAnonymous(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, "user", []byte("not json")))

	s := NewState(ctx, mem, Options{})
	assert.False(t, s.IsAuthenticated())
}
