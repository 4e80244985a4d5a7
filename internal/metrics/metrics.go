// Package metrics provides Prometheus metrics for declarr runs. They are
// registered on the default registry and exposed by the CLI when a metrics
// listen address is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all declarr metrics
	namespace = "declarr"
)

var (
	// SyncTotal tracks reconciliation runs by result
	SyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_total",
			Help:      "Total number of reconciliation runs",
		},
		[]string{"result"},
	)

	// SyncDuration tracks reconciliation run duration
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of reconciliation runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// ApplyChangesTotal tracks changes applied to the remote instance
	ApplyChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apply_changes_total",
			Help:      "Total number of changes applied to the remote instance",
		},
		[]string{"resource", "action"},
	)

	// UnmanagedTotal tracks remote resources found with no local declaration
	UnmanagedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmanaged_total",
			Help:      "Total number of unmanaged remote resources encountered",
		},
		[]string{"resource"},
	)
)

func init() {
	prometheus.MustRegister(
		SyncTotal,
		SyncDuration,
		ApplyChangesTotal,
		UnmanagedTotal,
	)
}

// RecordSync records the outcome and duration of one reconciliation run.
func RecordSync(result string, duration float64) {
	SyncTotal.WithLabelValues(result).Inc()
	SyncDuration.Observe(duration)
}

// RecordChange records a create, update, or delete issued to the remote instance.
func RecordChange(resource, action string) {
	ApplyChangesTotal.WithLabelValues(resource, action).Inc()
}

// RecordUnmanaged records a remote resource left in place because no local
// declaration matched it.
func RecordUnmanaged(resource string) {
	UnmanagedTotal.WithLabelValues(resource).Inc()
}
