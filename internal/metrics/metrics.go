package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)

	OrdersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_orders_placed_total",
			Help: "Orders created, by initial status",
		},
		[]string{"initial_status"},
	)

	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_order_transitions_total",
			Help: "Applied order status changes",
		},
		[]string{"from", "to"},
	)

	OrderRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_order_rejections_total",
			Help: "Order operations refused with a business error",
		},
		[]string{"reason"},
	)
)
