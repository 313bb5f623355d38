package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics. Each instance owns its
// registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	OrdersCreated       prometheus.Counter
	OrderItemsAdded     prometheus.Counter
	OrderStatusChanges  *prometheus.CounterVec
	PaymentsRecorded    *prometheus.CounterVec
	StockTransactions   *prometheus.CounterVec
	ReservationsSaved   *prometheus.CounterVec
	EventPublishFailure *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders opened",
		}),
		OrderItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_items_added_total",
			Help: "Items added to orders",
		}),
		OrderStatusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_status_changes_total",
				Help: "Order status changes by target status",
			},
			[]string{"status"},
		),
		PaymentsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_recorded_total",
				Help: "Payments recorded by method",
			},
			[]string{"method"},
		),
		StockTransactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_transactions_total",
				Help: "Stock ledger entries by type",
			},
			[]string{"type"},
		),
		ReservationsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_saved_total",
				Help: "Reservations created or updated by resulting status",
			},
			[]string{"status"},
		),
		EventPublishFailure: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_publish_failures_total",
				Help: "Domain events that could not be delivered, by event type",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.OrdersCreated,
		m.OrderItemsAdded,
		m.OrderStatusChanges,
		m.PaymentsRecorded,
		m.StockTransactions,
		m.ReservationsSaved,
		m.EventPublishFailure,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
