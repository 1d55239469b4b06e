// Package metrics defines and registers the custom Prometheus metrics of the
// provisioning API. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics are registered with the default registry at package init through
// promauto; the /metrics endpoint serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "provisioning"

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsCreatedTotal counts accounts committed to the store.
var AccountsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of learner accounts created.",
	},
)

// AccountWarningsTotal counts best-effort steps that failed after creation.
// Label:
//   - step: "site_attribution", "comments_service" or "language_preference"
var AccountWarningsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_warnings_total",
		Help:      "Total number of post-creation steps downgraded to warnings, by step.",
	},
	[]string{"step"},
)

// SiteLookupsTotal counts site scoped user lookups.
// Labels:
//   - result: "found", "not_found" or "not_attributed"
//   - source: the attribution source that matched, empty otherwise
var SiteLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "site_lookups_total",
		Help:      "Total number of site scoped user lookups, by result and matching source.",
	},
	[]string{"result", "source"},
)

// ── Enrollment metrics ────────────────────────────────────────────────────────

// EnrollmentsTotal counts enrollment writes by the path that produced them.
// Label:
//   - path: "normal", "update", "forced" or "failed"
var EnrollmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Total number of enrollment requests reaching the store, by resulting path.",
	},
	[]string{"path"},
)

// BatchEnrollmentDuration measures how long a batch enrollment request takes.
var BatchEnrollmentDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_enrollment_duration_seconds",
		Help:      "Duration of batch enrollment requests.",
		Buckets:   prometheus.DefBuckets,
	},
)
