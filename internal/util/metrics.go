package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_api_requests_total",
		Help: "Total number of requests sent to the remote POS API",
	}, []string{"method", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_api_request_duration_seconds",
		Help:    "Latency of remote POS API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	AuthRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_auth_retries_total",
		Help: "Total number of requests resent after a 401/403 with a refreshed CSRF token",
	})

	LoginRedirectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_login_redirects_total",
		Help: "Total number of forced redirects to the login page",
	})

	CSRFRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_csrf_refresh_total",
		Help: "Total number of CSRF token fetches",
	}, []string{"result"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_placed_total",
		Help: "Total number of orders committed by the remote API",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_failed_total",
		Help: "Total number of order submissions that were rejected",
	}, []string{"reason"})

	ReceiptsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_receipts_failed_total",
		Help: "Total number of receipt renders that failed after a committed order",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
