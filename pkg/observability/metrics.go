package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chargeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charge_operations_total",
		Help: "Total charge-processor operations by outcome",
	}, []string{
		"operation", // authorize, capture, settle, cancel
		"state",     // resulting transaction state
	})

	chargeAmountMinorUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charge_amount_minor_units_total",
		Help: "Total charged amount in minor units (revenue tracking)",
	}, []string{
		"operation",
		"state",
		"currency",
	})

	chargeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "charge_operation_duration_seconds",
		Help: "End-to-end duration of one charge operation",
		// 100ms to 30s covers typical provider latencies
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"operation",
		"state",
	})

	paymentProfilesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_profiles_created_total",
		Help: "Total payment profiles provisioned with the provider",
	}, []string{
		"provider",
		"outcome", // created, failed
	})

	auditEntriesLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_log_entries_lost_total",
		Help: "Audit log entries that could not be persisted",
	})
)

// RecordChargeOperation records one state-machine operation outcome.
// This is the primary business metric for success-rate dashboards:
//
//	sum(rate(charge_operations_total{state="authorized"}[5m]))
//	/
//	sum(rate(charge_operations_total{operation="authorize"}[5m]))
func RecordChargeOperation(operation, state, currency string, amountMinor int64, seconds float64) {
	chargeOperationsTotal.WithLabelValues(operation, state).Inc()
	chargeAmountMinorUnits.WithLabelValues(operation, state, currency).Add(float64(amountMinor))
	chargeOperationDuration.WithLabelValues(operation, state).Observe(seconds)
}

// RecordProfileProvisioned records a payment profile provisioning attempt
func RecordProfileProvisioned(provider, outcome string) {
	paymentProfilesCreated.WithLabelValues(provider, outcome).Inc()
}

// RecordAuditEntryLost counts an audit entry that failed to persist
func RecordAuditEntryLost() {
	auditEntriesLost.Inc()
}
