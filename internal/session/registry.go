package session

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/goldstore/storefront/internal/authstate"
	"github.com/goldstore/storefront/internal/cart"
	"github.com/goldstore/storefront/internal/notify"
	"github.com/goldstore/storefront/internal/orders"
	"github.com/goldstore/storefront/pkg/config"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/metrics"
	"github.com/goldstore/storefront/pkg/storage"
	"golang.org/x/sync/singleflight"
)

var clientIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Options wires a Registry.
type Options struct {
	Storage  config.StorageConfig
	Session  config.SessionConfig
	Order    config.OrderConfig
	Auth     config.AuthConfig
	Notifier notify.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.StoreMetrics
	Now      func() time.Time
}

// Registry lazily builds one Session per client id over a shared backend.
// Each session is rehydrated from storage once; concurrent first requests
// for the same client share that load.
//
// A session's in-memory state is authoritative until eviction, so all
// requests for one client must reach the same process: run a single API
// instance, or pin clients to instances on X-Client-Id.
type Registry struct {
	backend  storage.Storage
	opts     Options
	now      func() time.Time
	group    singleflight.Group
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry over backend.
func NewRegistry(backend storage.Storage, opts Options) *Registry {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	return &Registry{
		backend:  backend,
		opts:     opts,
		now:      now,
		sessions: map[string]*Session{},
	}
}

// ValidClientID reports whether id can name a client namespace.
func ValidClientID(id string) bool {
	return clientIDRe.MatchString(id)
}

// Get returns the session for clientID, rehydrating it on first use. The
// session counts as in use until it is handed back with Release, and the
// idle sweep never evicts a session in use.
func (r *Registry) Get(ctx context.Context, clientID string) (*Session, error) {
	if !ValidClientID(clientID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid client id")
	}

	// The first caller's cancellation must not fail the others waiting on it.
	loadCtx := context.WithoutCancel(ctx)
	for {
		if s := r.acquire(clientID); s != nil {
			return s, nil
		}
		r.group.Do(clientID, func() (any, error) {
			if s := r.lookup(clientID); s != nil {
				return s, nil
			}
			s := r.build(loadCtx, clientID)
			r.mu.Lock()
			r.sessions[clientID] = s
			size := len(r.sessions)
			r.mu.Unlock()
			r.opts.Metrics.SetSessionsActive(size)
			return s, nil
		})
	}
}

// Release marks the end of one use of s started by Get.
func (r *Registry) Release(s *Session) {
	if s == nil {
		return
	}
	s.touch(r.now())
	s.inflight.Add(-1)
}

// acquire claims the cached session under the read lock so Evict, which
// holds the write lock, sees the claim before deciding.
func (r *Registry) acquire(clientID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.sessions[clientID]
	if s != nil {
		s.inflight.Add(1)
		s.touch(r.now())
	}
	return s
}

func (r *Registry) lookup(clientID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[clientID]
}

func (r *Registry) build(ctx context.Context, clientID string) *Session {
	if r.opts.Logger != nil {
		ctx = r.opts.Logger.WithClientID(ctx, clientID)
	}
	scoped := storage.Namespace(r.backend, clientID)

	history := orders.NewHistory(ctx, scoped, orders.Options{
		Key:     r.opts.Storage.OrdersKey,
		Logger:  r.opts.Logger,
		Metrics: r.opts.Metrics,
	})
	state := authstate.NewState(ctx, scoped, authstate.Options{
		TokenKey: r.opts.Storage.TokenKey,
		UserKey:  r.opts.Storage.UserKey,
		Logger:   r.opts.Logger,
		Metrics:  r.opts.Metrics,
	})
	s := &Session{
		ClientID: clientID,
		Orders:   history,
		Auth:     state,
		Guard:    authstate.NewGuard(state, r.opts.Auth, r.opts.Logger, r.opts.Metrics),
		Cart: cart.NewStore(ctx, scoped, cart.Options{
			Key:      r.opts.Storage.CartKey,
			History:  history,
			Notifier: r.opts.Notifier,
			Order:    r.opts.Order,
			Logger:   r.opts.Logger,
			Metrics:  r.opts.Metrics,
			Now:      r.now,
		}),
	}
	s.touch(r.now())

	if r.opts.Logger != nil {
		r.opts.Logger.Debug(ctx, "session rehydrated")
	}
	return s
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Ping checks the shared storage backend.
func (r *Registry) Ping(ctx context.Context) error {
	return r.backend.Ping(ctx)
}

// Evict drops sessions idle for longer than the configured TTL and not in
// use. Their persisted state is untouched and is rehydrated on the next
// request.
func (r *Registry) Evict() int {
	ttl := r.opts.Session.IdleTTL
	if ttl <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	evicted := 0
	for id, s := range r.sessions {
		if s.inflight.Load() == 0 && s.idleSince(now) > ttl {
			delete(r.sessions, id)
			evicted++
		}
	}
	size := len(r.sessions)
	r.mu.Unlock()

	r.opts.Metrics.SetSessionsActive(size)
	return evicted
}

// Run sweeps idle sessions every SweepInterval until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.opts.Session.SweepInterval
	if interval <= 0 || r.opts.Session.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 && r.opts.Logger != nil {
				r.opts.Logger.Info(r.opts.Logger.WithField(ctx, "evicted", n), "idle sessions evicted")
			}
		}
	}
}
