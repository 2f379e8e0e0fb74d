// Package metrics defines and registers all custom Prometheus metrics for the
// ERP portal. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is loaded; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Backend gateway metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the ERP backend.
// Labels:
//   - method: HTTP method of the call
//   - code: response status code, or "error" when no response was received
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the ERP backend.",
	},
	[]string{"method", "code"},
)

// BackendRequestDuration measures round-trip latency to the ERP backend.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of ERP backend requests, including retries.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// BackendCircuitTransitionsTotal counts circuit breaker state changes.
// Label:
//   - to: the state the breaker moved into (closed, half-open, open)
var BackendCircuitTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_circuit_transitions_total",
		Help:      "Total number of ERP backend circuit breaker state changes.",
	},
	[]string{"to"},
)

// TokenRefreshTotal counts access-token refresh attempts triggered by a 401.
// Label:
//   - result: "success" or "failure"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access token refresh attempts.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsExpiredTotal counts sessions torn down after a failed refresh.
var SessionsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_expired_total",
		Help:      "Total number of sessions expired because the refresh token was rejected.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationFetchesTotal counts the list fetches performed by a poll.
// Labels:
//   - source: "inventory", "invoices" or "orders"
//   - result: "ok" or "error"
var NotificationFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_fetches_total",
		Help:      "Total number of alert source fetches, by source and result.",
	},
	[]string{"source", "result"},
)

// PolledSessions tracks how many sessions currently have a running poller.
var PolledSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "polled_sessions",
		Help:      "Current number of sessions with an active notification poller.",
	},
)
