// Package metrics defines and registers all custom Prometheus metrics for the
// registry API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "registry"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", or the error kind on failure (e.g. "AuthenticationError")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"action", "result"},
)

// AccessDeniedTotal counts requests rejected by the auth or RBAC middleware.
// Label:
//   - reason: "missing_token", "invalid_token" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by authentication or authorization.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
// Label:
//   - scope: "api" or "auth"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"scope"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Labels:
//   - type: the auth event type (e.g. "login")
//   - result: "recorded", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of auth audit events, by type and outcome.",
	},
	[]string{"type", "result"},
)

// AuditQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditRecordDuration measures how long persisting a single audit event takes.
var AuditRecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_record_duration_seconds",
		Help:      "Duration of audit event persistence from dequeue to write.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Community metrics ─────────────────────────────────────────────────────────

// CommunityProfilesCreatedTotal counts newly created community profiles.
// Label:
//   - type: the community type (e.g. "fishing")
var CommunityProfilesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "community_profiles_created_total",
		Help:      "Total number of community profiles created, by community type.",
	},
	[]string{"type"},
)
