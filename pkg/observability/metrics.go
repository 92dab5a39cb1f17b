package observability

import (
	"context"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

var states = []domain.SessionState{
	domain.StateUnconnected,
	domain.StateConnecting,
	domain.StateConnected,
	domain.StateFailed,
}

// Metrics records session activity.
type Metrics struct {
	connects *prometheus.CounterVec
	updates  prometheus.Counter
	facets   *prometheus.CounterVec
	errors   prometheus.Counter
	cart     *prometheus.CounterVec
	state    *prometheus.GaugeVec

	mu   sync.Mutex
	last domain.HostContext
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_total",
			Help:      "Host connection attempts by outcome.",
		}, []string{"outcome"}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_context_updates_total",
			Help:      "Host context updates delivered to the view.",
		}),
		facets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_context_facet_changes_total",
			Help:      "Host context facets whose value changed.",
		}, []string{"facet"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_errors_total",
			Help:      "Advisory errors reported while connected.",
		}),
		cart: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_additions_total",
			Help:      "Add to cart clicks by product.",
		}, []string{"product"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_state",
			Help:      "1 for the current session state, 0 otherwise.",
		}, []string{"state"}),
	}
	m.SetState(domain.StateUnconnected)

	if reg != nil {
		reg.MustRegister(m.connects, m.updates, m.facets, m.errors, m.cart, m.state)
	}
	return m
}

// ObserveConnect records the outcome of a Connect call and the resulting state.
func (m *Metrics) ObserveConnect(err error) {
	if err != nil {
		m.connects.WithLabelValues("failure").Inc()
		m.SetState(domain.StateFailed)
		return
	}
	m.connects.WithLabelValues("success").Inc()
	m.SetState(domain.StateConnected)
}

// SetState marks s as the current session state.
func (m *Metrics) SetState(s domain.SessionState) {
	for _, st := range states {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(string(st)).Set(v)
	}
}

// ObserveCart counts an add-to-cart click.
func (m *Metrics) ObserveCart(product domain.Product) {
	m.cart.WithLabelValues(product.Title).Inc()
}

// Hooks returns session hooks feeding the collectors.
func (m *Metrics) Hooks() domain.SessionHooks {
	return domain.SessionHooks{
		OnConnected: func(_ context.Context, e *domain.HostContextEvent) {
			m.mu.Lock()
			m.last = e.Snapshot.Clone()
			m.mu.Unlock()
		},
		OnHostContextChanged: func(_ context.Context, e *domain.HostContextEvent) {
			m.updates.Inc()

			m.mu.Lock()
			diff := domain.Diff(e.SessionID, m.last, e.Snapshot)
			m.last = e.Snapshot.Clone()
			m.mu.Unlock()

			if diff == nil {
				return
			}
			for _, f := range diff.Facets {
				m.facets.WithLabelValues(string(f)).Inc()
			}
		},
		OnError: func(context.Context, *domain.ErrorEvent) {
			m.errors.Inc()
		},
	}
}

// Connects returns the connect outcome counter.
func (m *Metrics) Connects() *prometheus.CounterVec { return m.connects }

// Updates returns the update counter.
func (m *Metrics) Updates() prometheus.Counter { return m.updates }

// FacetChanges returns the per-facet change counter.
func (m *Metrics) FacetChanges() *prometheus.CounterVec { return m.facets }

// Errors returns the advisory error counter.
func (m *Metrics) Errors() prometheus.Counter { return m.errors }

// CartAdditions returns the add-to-cart counter.
func (m *Metrics) CartAdditions() *prometheus.CounterVec { return m.cart }

// State returns the session state gauge.
func (m *Metrics) State() *prometheus.GaugeVec { return m.state }
