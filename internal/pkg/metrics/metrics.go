// Package metrics defines and registers all custom Prometheus metrics for the
// banking core. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "banque"

// ── Ledger metrics ────────────────────────────────────────────────────────────

// LedgerOperationsTotal counts ledger use cases by outcome.
// Labels:
//   - operation: e.g. "transfer", "debit", "delete_account"
//   - result: "ok" or the domain error kind (e.g. "insufficient_funds")
var LedgerOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_operations_total",
		Help:      "Total number of ledger operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// TransferredAmountTotal sums the amounts moved by successful transfers.
var TransferredAmountTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transferred_amount_total",
		Help:      "Sum of amounts moved by successful transfers.",
	},
)

// ── Credential metrics ────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - outcome: "client_authenticated", "manager_authenticated", "login_failed", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// PasswordVerificationsTotal counts successful verifications per hash scheme.
// Label:
//   - scheme: "bcrypt" or "legacy_sha256"
var PasswordVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_verifications_total",
		Help:      "Total number of successful password verifications, by hash scheme.",
	},
	[]string{"scheme"},
)

// PasswordMigrationsTotal counts legacy hashes replaced by a modern hash.
var PasswordMigrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_migrations_total",
		Help:      "Total number of legacy password hashes upgraded to the modern scheme.",
	},
)
