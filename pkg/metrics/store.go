package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records what the client-state stores do. Store failures never
// reach callers, so these counters are the only place they show up besides logs.
type StoreMetrics struct {
	cartMutations   *prometheus.CounterVec
	ordersCompleted prometheus.Counter
	storageFailures *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
}

// NewStoreMetrics registers the store metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldstore",
		Name:      "cart_mutations_total",
		Help:      "Cart mutations applied, by operation.",
	}, []string{"op"})
	ordersCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "goldstore",
		Name:      "orders_completed_total",
		Help:      "Carts converted into local order snapshots.",
	})
	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldstore",
		Name:      "storage_failures_total",
		Help:      "Persistence failures swallowed by the stores.",
	}, []string{"store", "op"})
	guardDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldstore",
		Name:      "guard_decisions_total",
		Help:      "Route guard outcomes.",
	}, []string{"outcome"})
	sessionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldstore",
		Name:      "sessions_active",
		Help:      "Client sessions currently held in memory.",
	})
	reg.MustRegister(cartMutations, ordersCompleted, storageFailures, guardDecisions, sessionsActive)
	return &StoreMetrics{
		cartMutations:   cartMutations,
		ordersCompleted: ordersCompleted,
		storageFailures: storageFailures,
		guardDecisions:  guardDecisions,
		sessionsActive:  sessionsActive,
	}
}

// IncCartMutation counts one applied cart operation.
func (m *StoreMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncOrderCompleted counts one completed checkout.
func (m *StoreMetrics) IncOrderCompleted() {
	if m == nil || m.ordersCompleted == nil {
		return
	}
	m.ordersCompleted.Inc()
}

// IncStorageFailure counts a swallowed persistence error.
func (m *StoreMetrics) IncStorageFailure(store, op string) {
	if m == nil || m.storageFailures == nil {
		return
	}
	m.storageFailures.WithLabelValues(normalizeLabel(store), normalizeLabel(op)).Inc()
}

// IncGuardDecision counts one route guard outcome.
func (m *StoreMetrics) IncGuardDecision(outcome string) {
	if m == nil || m.guardDecisions == nil {
		return
	}
	m.guardDecisions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// SetSessionsActive publishes the registry size.
func (m *StoreMetrics) SetSessionsActive(n int) {
	if m == nil || m.sessionsActive == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
