// Package metrics defines the custom Prometheus metrics of the defect-web
// front end. It is the single source of truth for metric names, labels and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "defectweb"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - op: "login" or "register"
//   - outcome: "ok", "invalid_form", "rejected", "connection", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and registration attempts, by outcome.",
	},
	[]string{"op", "outcome"},
)

// SessionChecksTotal counts session guard runs.
// Label:
//   - state: the terminal guard state ("authenticated", "unauthenticated")
var SessionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of session guard checks, by terminal state.",
	},
	[]string{"state"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestDuration measures calls to the remote defect-tracking API.
// Labels:
//   - endpoint: logical endpoint name (e.g. "login", "projects")
//   - code: HTTP status code, or "transport" when no response arrived
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the remote API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "code"},
)

// DashboardSectionErrorsTotal counts dashboard collections that failed to load.
// Label:
//   - section: "projects", "defects", "statistics", "users"
var DashboardSectionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_section_errors_total",
		Help:      "Total number of dashboard sections that failed to load.",
	},
	[]string{"section"},
)
