// Package session composes the per-client stores. The stores stay
// independent siblings; a Session only groups them for one client id.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goldstore/storefront/internal/authstate"
	"github.com/goldstore/storefront/internal/cart"
	"github.com/goldstore/storefront/internal/orders"
)

// Session is the rehydrated state of one client.
type Session struct {
	ClientID string
	Cart     *cart.Store
	Orders   *orders.History
	Auth     *authstate.State
	Guard    *authstate.Guard

	lastSeen atomic.Int64
	inflight atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen is when the session was last handed out by the registry.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(s.LastSeen())
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached to ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
