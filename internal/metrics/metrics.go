package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huddle_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Coordinator metrics
	Connections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_connections",
			Help: "Currently registered connections",
		},
	)

	UsersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_users_online",
			Help: "Currently joined users",
		},
	)

	TypingUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_typing_users",
			Help: "Users currently shown as typing",
		},
	)

	HistoryMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_history_messages",
			Help: "Messages currently retained in the history",
		},
	)

	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_events_total",
			Help: "Inbound events processed by the coordinator",
		},
		[]string{"type"},
	)

	EventsIgnored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_events_ignored_total",
			Help: "Inbound events dropped because they were invalid or out of order",
		},
		[]string{"type"},
	)

	MessagesLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_messages_total",
			Help: "Messages appended to the history",
		},
		[]string{"kind"},
	)

	DeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_delivery_failures_total",
			Help: "Outbound frames that could not be queued for a recipient",
		},
	)

	TypingExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_typing_expired_total",
			Help: "Typing indicators cleared by the server side idle timeout",
		},
	)
)
