// Package cart holds the working cart of one client. Every mutation rewrites
// the whole cart snapshot to storage; reads are recomputed from the lines.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goldstore/storefront/internal/catalog"
	"github.com/goldstore/storefront/internal/notify"
	"github.com/goldstore/storefront/internal/orders"
	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/metrics"
	"github.com/goldstore/storefront/pkg/storage"
	"github.com/goldstore/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

const storeName = "cart"

// Notification texts shown to the shopper.
const (
	MsgAdded   = "Produto adicionado ao carrinho!"
	MsgRemoved = "Produto removido do carrinho"
)

const (
	opAdd        = "add"
	opUpdate     = "update_quantity"
	opRemove     = "remove"
	opRemoveLine = "remove_line"
	opClear      = "clear"
	opComplete   = "complete"
)

// Options configures a Store.
type Options struct {
	Key      string
	History  OrderRecorder
	Notifier notify.Notifier
	Order    config.OrderConfig
	Logger   *logger.Logger
	Metrics  *metrics.StoreMetrics
	Now      func() time.Time
}

// Summary is a consistent read of the cart with its derived totals.
type Summary struct {
	Items      []types.LineItem `json:"items"`
	TotalItems int              `json:"totalItems"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
}

// Store is the cart of one client. The (id, variationId) pair is unique
// across its lines and every quantity is at least 1.
type Store struct {
	mu       sync.Mutex
	store    storage.Storage
	key      string
	items    []types.LineItem
	history  OrderRecorder
	notifier notify.Notifier
	orderCfg config.OrderConfig
	logg     *logger.Logger
	metrics  *metrics.StoreMetrics
	now      func() time.Time
}

// NewStore rehydrates the cart from store. Missing or corrupt data yields
// an empty cart.
func NewStore(ctx context.Context, store storage.Storage, opts Options) *Store {
	s := &Store{
		store:    store,
		key:      opts.Key,
		history:  opts.History,
		notifier: opts.Notifier,
		orderCfg: opts.Order,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if s.key == "" {
		s.key = "cart"
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []types.LineItem {
	var persisted []types.LineItem
	err := storage.LoadJSON(ctx, s.store, s.key, &persisted)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return nil
	default:
		s.fail(ctx, "load", err)
		return nil
	}

	// Drop rows an older writer may have left invalid so the invariants
	// hold from the first read.
	out := make([]types.LineItem, 0, len(persisted))
	index := map[types.LineKey]int{}
	for _, item := range persisted {
		if item.ID == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i, ok := index[item.Key()]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}

// AddToCart adds one unit of product (optionally a specific variation). An
// existing line with the same key is incremented instead of duplicated.
func (s *Store) AddToCart(ctx context.Context, product catalog.Product, variation *catalog.Variation) {
	s.mu.Lock()
	var variationID *string
	if variation != nil {
		id := variation.ID
		variationID = &id
	}
	key := types.NewLineKey(product.ID, variationID)

	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity++
	} else {
		line := types.LineItem{
			ID:          product.ID,
			VariationID: variationID,
			Name:        product.Name,
			Image:       product.Image,
			Price:       product.Price,
			Quantity:    1,
		}
		if variation != nil {
			line.Size = variation.Size
			line.Color = variation.Color
		}
		s.items = append(s.items, line)
	}
	s.persistLocked(ctx, opAdd)
	s.mu.Unlock()

	s.notifier.NotifySuccess(ctx, MsgAdded)
}

// UpdateQuantity sets the line's quantity to max(1, quantity+delta). A key
// that matches no line is ignored.
func (s *Store) UpdateQuantity(ctx context.Context, key types.LineKey, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return
	}
	s.items[i].Quantity = max(1, s.items[i].Quantity+delta)
	s.persistLocked(ctx, opUpdate)
}

// RemoveFromCart removes every line of productID, whatever its variation.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	kept := s.items[:0:0]
	for _, item := range s.items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persistLocked(ctx, opRemove)
	s.mu.Unlock()

	s.notifier.NotifySuccess(ctx, MsgRemoved)
}

// RemoveLine removes the single line identified by key.
func (s *Store) RemoveLine(ctx context.Context, key types.LineKey) {
	s.mu.Lock()
	i := s.indexOf(key)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.persistLocked(ctx, opRemoveLine)
	s.mu.Unlock()

	s.notifier.NotifySuccess(ctx, MsgRemoved)
}

// ClearCart empties the cart and removes its persisted snapshot.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(ctx)
	s.metrics.IncCartMutation(opClear)
}

// CompleteOrder snapshots the cart into an order, prepends it to the
// history and clears the cart. An empty cart is left alone and reports false.
func (s *Store) CompleteOrder(ctx context.Context, payment types.PaymentData) (types.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return types.Order{}, false
	}

	order := orders.Build(s.items, payment, s.now(), s.orderCfg)
	if s.history != nil {
		s.history.Record(ctx, order)
	}
	s.clearLocked(ctx)
	s.metrics.IncCartMutation(opComplete)
	s.metrics.IncOrderCompleted()
	return order, true
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []types.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CloneLineItems(s.items)
}

// TotalItems is the sum of all quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalPrice is the sum of price * quantity over all lines.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// Summary reads the lines and both totals under one lock.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Items:      types.CloneLineItems(s.items),
		TotalItems: totalItems(s.items),
		TotalPrice: totalPrice(s.items),
	}
}

func totalItems(items []types.LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalPrice(items []types.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (s *Store) indexOf(key types.LineKey) int {
	for i, item := range s.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context, op string) {
	s.metrics.IncCartMutation(op)
	if err := storage.SaveJSON(ctx, s.store, s.key, s.items); err != nil {
		s.fail(ctx, "save", err)
	}
}

func (s *Store) clearLocked(ctx context.Context) {
	s.items = nil
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.fail(ctx, "delete", err)
	}
}

func (s *Store) fail(ctx context.Context, op string, err error) {
	s.metrics.IncStorageFailure(storeName, op)
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"store": storeName, "op": op, "key": s.key})
	s.logg.Error(ctx, "cart persistence failed", err)
}
