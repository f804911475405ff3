// Package metrics defines and registers all custom Prometheus metrics for
// the gamification ledger. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default registry at init time via promauto; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// ── Settlement metrics ────────────────────────────────────────────────────────

// PurchasesTotal counts shop purchases that settled.
// Labels:
//   - category: item category ("cosmetic", "consumable")
//   - result: "charged" or "replay" (idempotent no-op, no debit)
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of shop purchases settled, by item category and result.",
	},
	[]string{"category", "result"},
)

// EnrollmentsTotal counts course enrollments that settled.
// Label:
//   - result: "charged", "free", or "replay"
var EnrollmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Total number of course enrollments settled, by result.",
	},
	[]string{"result"},
)

// InsufficientFundsTotal counts rejected operations where the balance could
// not cover the price.
// Label:
//   - operation: "purchase" or "enroll"
var InsufficientFundsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insufficient_funds_total",
		Help:      "Total number of operations rejected for insufficient coin balance.",
	},
	[]string{"operation"},
)

// CompletionsSettledTotal counts course completion settlements.
// Label:
//   - status: the recorded progress status ("completed", "failed")
var CompletionsSettledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completions_settled_total",
		Help:      "Total number of completion settlements processed, by progress status.",
	},
	[]string{"status"},
)

// CertificatesIssuedTotal counts freshly minted certificates (idempotent
// replays are not counted).
var CertificatesIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "certificates_issued_total",
		Help:      "Total number of certificates minted.",
	},
)

// RewardReconciliationTotal counts settlements where progress was recorded
// but the reward grant or certificate issuance failed afterwards. These need
// a retry; the settlement is idempotent so replays are safe.
var RewardReconciliationTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reward_reconciliation_total",
		Help:      "Total number of settlements left partially applied and pending retry.",
	},
)

// ── Settlement queue metrics ──────────────────────────────────────────────────

// SettlementsDedupTotal counts deduplication decisions on the async
// settlement path.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new, processed)
var SettlementsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlements_dedup_total",
		Help:      "Total number of settlement deduplication checks, by result (hit/miss).",
	},
	[]string{"result"},
)

// SettlementQueueDepth tracks the current number of completions waiting in
// each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index ("0", "1", …)
var SettlementQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "settlement_queue_depth",
		Help:      "Current number of completions pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SettlementDuration measures how long one settlement takes end-to-end.
// Label:
//   - status: the progress status, or "error" on failure
var SettlementDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settlement_duration_seconds",
		Help:      "Duration of completion settlement from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"status"},
)
