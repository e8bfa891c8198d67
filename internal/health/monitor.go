package health

import (
	"context"
	"time"

	redisclient "github.com/vietddude/upgradewatch/internal/infra/redis"
	"github.com/vietddude/upgradewatch/internal/monitor"
)

// Status is the aggregate health of one chain watcher.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// ChainReport is the detailed health view of one chain watcher.
type ChainReport struct {
	ChainID      string                    `json:"chain_id"`
	Status       Status                    `json:"status"`
	Running      bool                      `json:"running"`
	Halted       bool                      `json:"halted"`
	LastCheck    time.Time                 `json:"last_check"`
	LastError    string                    `json:"last_error,omitempty"`
	FailedAlerts []redisclient.FailedAlert `json:"failed_alerts,omitempty"`
}

// WatcherStatus is what the monitor needs from a running watcher.
type WatcherStatus interface {
	Status() monitor.Status
}

// Journal is the optional failed-alert journal surface.
type Journal interface {
	Pending(ctx context.Context, chainID string) ([]redisclient.FailedAlert, error)
}

// Monitor derives per-chain health from watcher status: a halted or stopped
// watcher is critical; a watcher whose last successful check is older than
// three intervals is degraded.
type Monitor struct {
	watchers  map[string]WatcherStatus
	intervals map[string]time.Duration
	journal   Journal // may be nil
}

// NewMonitor creates a health monitor over the given watchers.
func NewMonitor(
	watchers map[string]WatcherStatus,
	intervals map[string]time.Duration,
	journal Journal,
) *Monitor {
	return &Monitor{
		watchers:  watchers,
		intervals: intervals,
		journal:   journal,
	}
}

// CheckHealth reports the current health of every chain watcher.
func (m *Monitor) CheckHealth(ctx context.Context) map[string]ChainReport {
	report := make(map[string]ChainReport, len(m.watchers))
	for chainID, w := range m.watchers {
		report[chainID] = m.checkChain(ctx, chainID, w)
	}
	return report
}

func (m *Monitor) checkChain(ctx context.Context, chainID string, w WatcherStatus) ChainReport {
	status := w.Status()
	rep := ChainReport{
		ChainID:   chainID,
		Status:    StatusHealthy,
		Running:   status.Running,
		Halted:    status.Halted,
		LastCheck: status.LastCheck,
		LastError: status.LastError,
	}

	switch {
	case status.Halted || !status.Running:
		rep.Status = StatusCritical
	case m.stale(chainID, status.LastCheck):
		rep.Status = StatusDegraded
	}

	if m.journal != nil {
		if pending, err := m.journal.Pending(ctx, chainID); err == nil {
			rep.FailedAlerts = pending
			if len(pending) > 0 && rep.Status == StatusHealthy {
				rep.Status = StatusDegraded
			}
		}
	}

	return rep
}

func (m *Monitor) stale(chainID string, lastCheck time.Time) bool {
	interval, ok := m.intervals[chainID]
	if !ok || lastCheck.IsZero() {
		return false
	}
	return time.Since(lastCheck) > 3*interval
}
