// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the storefront.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	OrdersPlaced          prometheus.Counter
	OrderTransitions      *prometheus.CounterVec
	InsufficientStock     prometheus.Counter
	StockReleaseFailures  prometheus.Counter
	StockUnitsReserved    prometheus.Counter
	StockUnitsReleased    prometheus.Counter
	StatusCacheOperations *prometheus.CounterVec
}

// New registers all collectors on a fresh registry under the given namespace
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Total number of orders placed",
		}),
		OrderTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_transitions_total",
				Help:      "Total number of committed order status transitions by target category",
			},
			[]string{"category"},
		),
		InsufficientStock: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_stock_total",
			Help:      "Total number of reservations rejected for insufficient stock",
		}),
		StockReleaseFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_release_failures_total",
			Help:      "Total number of order lines whose stock release could not be verified",
		}),
		StockUnitsReserved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_reserved_total",
			Help:      "Total number of stock units reserved by placed orders",
		}),
		StockUnitsReleased: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_released_total",
			Help:      "Total number of stock units returned by cancellations",
		}),
		StatusCacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_cache_operations_total",
				Help:      "Order status directory cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
}

func (m *Metrics) Transition(category string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(category).Inc()
}

func (m *Metrics) StockRejected() {
	if m == nil {
		return
	}
	m.InsufficientStock.Inc()
}

func (m *Metrics) Reserved(units int) {
	if m == nil {
		return
	}
	m.StockUnitsReserved.Add(float64(units))
}

func (m *Metrics) Released(units int) {
	if m == nil {
		return
	}
	m.StockUnitsReleased.Add(float64(units))
}

func (m *Metrics) ReleaseFailed() {
	if m == nil {
		return
	}
	m.StockReleaseFailures.Inc()
}

func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.StatusCacheOperations.WithLabelValues(result).Inc()
}

// ObserveHTTP records one completed request
func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}
