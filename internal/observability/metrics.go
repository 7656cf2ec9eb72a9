package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	entriesStartedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timevault",
		Subsystem: "tracking",
		Name:      "entries_started_total",
		Help:      "Number of time entries started via the running-timer workflow.",
	})
	entriesStoppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timevault",
		Subsystem: "tracking",
		Name:      "entries_stopped_total",
		Help:      "Number of running time entries stopped.",
	})
	entriesCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timevault",
		Subsystem: "tracking",
		Name:      "entries_created_total",
		Help:      "Number of time entries created with an explicit range.",
	})
	startConflictCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timevault",
		Subsystem: "tracking",
		Name:      "start_conflicts_total",
		Help:      "Start attempts rejected because another entry was already running.",
	})
	expensesCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timevault",
		Subsystem: "expense",
		Name:      "expenses_created_total",
		Help:      "Number of expenses recorded.",
	})
)

func init() {
	prometheus.MustRegister(
		entriesStartedCounter,
		entriesStoppedCounter,
		entriesCreatedCounter,
		startConflictCounter,
		expensesCreatedCounter,
	)
}

// RecordEntryStarted increments the started-entries counter.
func RecordEntryStarted() {
	entriesStartedCounter.Inc()
}

// RecordEntryStopped increments the stopped-entries counter.
func RecordEntryStopped() {
	entriesStoppedCounter.Inc()
}

// RecordEntryCreated increments the created-entries counter.
func RecordEntryCreated() {
	entriesCreatedCounter.Inc()
}

// RecordStartConflict increments the rejected-starts counter.
func RecordStartConflict() {
	startConflictCounter.Inc()
}

// RecordExpenseCreated increments the recorded-expenses counter.
func RecordExpenseCreated() {
	expensesCreatedCounter.Inc()
}
