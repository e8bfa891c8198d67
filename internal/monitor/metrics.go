package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds reported outside the chain client.
const (
	errDatabaseUpdate = "database_update_failed"
	errDatabaseRead   = "database_read_failed"
	errAlertDelivery  = "alert_delivery_failed"
)

// Metrics is the watcher's observational surface. It is built against an
// injected registry so multiple watchers in one process share one exposition
// without ambient globals.
type Metrics struct {
	lastChecked *prometheus.GaugeVec
	errors      *prometheus.CounterVec
}

// NewMetrics registers the watcher metrics on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		lastChecked: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cosmos_upgrade_watcher_last_checked",
				Help: "Last time an upgrade plan was fetched",
			},
			[]string{"chain_id"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cosmos_upgrade_watcher_errors_total",
				Help: "Errors encountered while watching for upgrades",
			},
			[]string{"chain_id", "error"},
		),
	}
}

// RecordCheck updates the last-checked gauge for a chain.
func (m *Metrics) RecordCheck(chainID string, t time.Time) {
	m.lastChecked.WithLabelValues(chainID).Set(float64(t.Unix()))
}

// IncrementError counts one categorized error for a chain.
func (m *Metrics) IncrementError(chainID, kind string) {
	m.errors.WithLabelValues(chainID, kind).Inc()
}
