// Package orders holds the client-local history of completed checkouts. It
// is a convenience cache that can diverge from the backend's order records.
package orders

import (
	"context"
	"errors"
	"sync"

	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/metrics"
	"github.com/goldstore/storefront/pkg/storage"
	"github.com/goldstore/storefront/pkg/types"
)

const storeName = "orders"

// Reader is the read-only view of the history handed to the UI layer.
type Reader interface {
	List() []types.Order
}

// Recorder is the single write path into the history.
type Recorder interface {
	Record(ctx context.Context, order types.Order)
}

// Options configures a History.
type Options struct {
	Key     string
	Logger  *logger.Logger
	Metrics *metrics.StoreMetrics
}

// History is an append-only, newest-first list of orders persisted as one
// JSON array under its storage key.
type History struct {
	mu      sync.RWMutex
	store   storage.Storage
	key     string
	orders  []types.Order
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
}

// NewHistory rehydrates the history from store. Missing or corrupt data
// yields an empty history.
func NewHistory(ctx context.Context, store storage.Storage, opts Options) *History {
	key := opts.Key
	if key == "" {
		key = "orders"
	}
	h := &History{
		store:   store,
		key:     key,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}
	h.orders = h.load(ctx)
	return h
}

func (h *History) load(ctx context.Context) []types.Order {
	var persisted []types.Order
	err := storage.LoadJSON(ctx, h.store, h.key, &persisted)
	switch {
	case err == nil:
		return persisted
	case errors.Is(err, storage.ErrNotFound):
		return nil
	default:
		h.fail(ctx, "load", err)
		return nil
	}
}

// List returns a copy of the orders, newest first.
func (h *History) List() []types.Order {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]types.Order, 0, len(h.orders))
	for _, o := range h.orders {
		out = append(out, o.Clone())
	}
	return out
}

// Len returns the number of recorded orders.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orders)
}

// Record prepends order and persists the whole history.
func (h *History) Record(ctx context.Context, order types.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := make([]types.Order, 0, len(h.orders)+1)
	next = append(next, order.Clone())
	next = append(next, h.orders...)
	h.orders = next

	if err := storage.SaveJSON(ctx, h.store, h.key, h.orders); err != nil {
		h.fail(ctx, "save", err)
	}
}

func (h *History) fail(ctx context.Context, op string, err error) {
	h.metrics.IncStorageFailure(storeName, op)
	if h.logg == nil {
		return
	}
	ctx = h.logg.WithFields(ctx, map[string]any{"store": storeName, "op": op, "key": h.key})
	h.logg.Error(ctx, "order history persistence failed", err)
}
