package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of effective cart mutations",
	}, []string{"op"})

	CartItemsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_rejected_total",
		Help: "Total number of add-to-cart candidates rejected by validation",
	})

	CartLineItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cart_line_items",
		Help: "Number of line items currently in the cart",
	})

	CartPersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of failed cart snapshot writes",
	})

	CartPersistLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_persist_latency_seconds",
		Help:    "Latency of cart snapshot writes",
		Buckets: prometheus.DefBuckets,
	})

	CartRehydrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_rehydrations_total",
		Help: "Total number of cart rehydrations by outcome",
	}, []string{"outcome"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of simulated orders placed",
	})

	EventsPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_publish_failed_total",
		Help: "Total number of events that could not be published",
	}, []string{"type"})

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
