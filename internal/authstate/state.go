// Package authstate holds the identity of the signed-in shopper and the
// route guard that consumes it.
package authstate

import (
	"context"
	"errors"
	"sync"

	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/metrics"
	"github.com/goldstore/storefront/pkg/storage"
	"github.com/goldstore/storefront/pkg/types"
	"go.uber.org/multierr"
)

const storeName = "auth"

// Options configures a State.
type Options struct {
	TokenKey string
	UserKey  string
	Logger   *logger.Logger
	Metrics  *metrics.StoreMetrics
}

// State is either anonymous or authenticated. It only becomes authenticated
// through Login; Logout or an unusable token makes it anonymous again.
type State struct {
	mu       sync.RWMutex
	store    storage.Storage
	tokenKey string
	userKey  string
	token    string
	user     *types.User
	logg     *logger.Logger
	metrics  *metrics.StoreMetrics
}

// NewState rehydrates the persisted identity. The token is not validated
// here; the backend rejects it on the next authenticated call if stale.
func NewState(ctx context.Context, store storage.Storage, opts Options) *State {
	s := &State{
		store:    store,
		tokenKey: opts.TokenKey,
		userKey:  opts.UserKey,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.tokenKey == "" {
		s.tokenKey = "token"
	}
	if s.userKey == "" {
		s.userKey = "user"
	}
	s.load(ctx)
	return s
}

func (s *State) load(ctx context.Context) {
	var user types.User
	err := storage.LoadJSON(ctx, s.store, s.userKey, &user)
	switch {
	case err == nil:
		s.user = &user
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.fail(ctx, "load", err)
	}

	raw, err := s.store.Get(ctx, s.tokenKey)
	switch {
	case err == nil:
		s.token = string(raw)
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.fail(ctx, "load", err)
	}
}

// Login persists token and user and makes the state authenticated.
func (s *State) Login(ctx context.Context, token string, user types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	u := user
	s.user = &u

	err := multierr.Append(
		s.store.Set(ctx, s.tokenKey, []byte(token)),
		storage.SaveJSON(ctx, s.store, s.userKey, user),
	)
	if err != nil {
		s.fail(ctx, "save", err)
	}
}

// Logout clears the persisted token and user.
func (s *State) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	if err := s.store.Delete(ctx, s.tokenKey, s.userKey); err != nil {
		s.fail(ctx, "delete", err)
	}
}

// User returns the current identity.
func (s *State) User() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return types.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated is true iff a user is held.
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Token returns the persisted bearer token, or "".
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *State) fail(ctx context.Context, op string, err error) {
	s.metrics.IncStorageFailure(storeName, op)
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"store": storeName, "op": op})
	s.logg.Error(ctx, "auth state persistence failed", err)
}
