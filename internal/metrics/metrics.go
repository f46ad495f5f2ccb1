// Package metrics exposes Prometheus collectors for the order service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics groups every collector the service records.
type Metrics struct {
	registry *prometheus.Registry

	OrdersPlaced     prometheus.Counter
	OrderRows        prometheus.Counter
	CheckoutFailures *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	CheckoutTotal    prometheus.Histogram
	HTTPDuration     *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Successful checkouts.",
		}),
		OrderRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_rows_total",
			Help:      "Order rows created by checkouts.",
		}),
		CheckoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_failures_total",
			Help:      "Rejected or failed checkouts by reason.",
		}, []string{"reason"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transitions by outcome.",
		}, []string{"from", "to", "role", "result"}),
		CheckoutTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_amount",
			Help:      "Checkout totals in minor currency units.",
			Buckets:   prometheus.ExponentialBuckets(10000, 2, 10),
		}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OrdersPlaced,
		m.OrderRows,
		m.CheckoutFailures,
		m.Transitions,
		m.CheckoutTotal,
		m.HTTPDuration,
	)

	return m
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CheckoutSucceeded records a placed batch.
func (m *Metrics) CheckoutSucceeded(rows int, total int64) {
	m.OrdersPlaced.Inc()
	m.OrderRows.Add(float64(rows))
	m.CheckoutTotal.Observe(float64(total))
}

// CheckoutFailed records a rejected checkout.
func (m *Metrics) CheckoutFailed(reason string) {
	m.CheckoutFailures.WithLabelValues(reason).Inc()
}

// Transition records a status change attempt.
func (m *Metrics) Transition(from, to, role, result string) {
	m.Transitions.WithLabelValues(from, to, role, result).Inc()
}

// ObserveHTTP records one served request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
