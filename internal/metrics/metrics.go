package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookit_http_requests_total",
		Help: "The total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookit_http_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookit_orders_placed_total",
		Help: "The total number of orders placed",
	})

	// CheckoutsRejected is labelled by reason: invalid, not_found,
	// insufficient_stock, error.
	CheckoutsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookit_checkouts_rejected_total",
		Help: "The total number of rejected checkouts by reason",
	}, []string{"reason"})

	CheckoutRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookit_checkout_retries_total",
		Help: "The total number of checkout transactions retried after a conflict",
	})

	ReportsFiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookit_reports_filed_total",
		Help: "The total number of reports filed by target type",
	}, []string{"target_type"})

	ReportsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookit_reports_resolved_total",
		Help: "The total number of report resolutions by action",
	}, []string{"action"})
)
