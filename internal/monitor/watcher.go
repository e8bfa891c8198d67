package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vietddude/upgradewatch/internal/alert"
	"github.com/vietddude/upgradewatch/internal/core/config"
	"github.com/vietddude/upgradewatch/internal/core/domain"
	"github.com/vietddude/upgradewatch/internal/infra/chain"
	redisclient "github.com/vietddude/upgradewatch/internal/infra/redis"
	"github.com/vietddude/upgradewatch/internal/infra/storage"
)

// AlertJournal records alert deliveries that failed, for operator replay.
type AlertJournal interface {
	RecordFailure(ctx context.Context, entry redisclient.FailedAlert) error
}

// Config holds one watcher's dependencies and tuning.
type Config struct {
	ChainID        string
	Client         chain.Client
	Ledger         storage.LedgerRepository
	Sink           alert.Sink
	Metrics        *Metrics
	Journal        AlertJournal // optional
	Interval       time.Duration
	ReminderBlocks int64
	OnQueryError   config.QueryErrorPolicy
}

// Status is a point-in-time view of one watcher, for health reporting.
type Status struct {
	ChainID   string    `json:"chain_id"`
	Running   bool      `json:"running"`
	Halted    bool      `json:"halted"`
	LastCheck time.Time `json:"last_check"`
	LastError string    `json:"last_error,omitempty"`
}

// Watcher runs the per-chain reconciliation loop. Each tick it fetches the
// current upgrade plan, reconciles it against the persisted ledger record,
// and decides between notifying a new upgrade, sending the one-time
// pre-upgrade reminder, or doing nothing.
type Watcher struct {
	cfg     Config
	log     *slog.Logger
	running atomic.Bool
	stop    chan struct{}

	mu        sync.RWMutex
	halted    bool
	lastCheck time.Time
	lastError string
}

// NewWatcher creates a watcher for one chain.
func NewWatcher(cfg Config) *Watcher {
	return &Watcher{
		cfg:  cfg,
		log:  slog.Default().With("chain", cfg.ChainID),
		stop: make(chan struct{}),
	}
}

// Start runs the watch loop until the context is canceled, Stop is called,
// or (under the halt policy) a plan/block query fails. The tick wait is a
// ticker observed alongside the shutdown signals, so cancellation never has
// to wait out a full interval.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("watcher already running")
	}
	defer w.running.Store(false)

	w.setHalted(false)
	w.log.Debug("starting watcher loop", "interval", w.cfg.Interval)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		case <-ticker.C:
			if err := w.runTick(ctx); err != nil {
				if w.cfg.OnQueryError == config.PolicyHalt {
					w.setHalted(true)
					return err
				}
				w.log.Warn("tick failed, retrying next interval", "error", err)
			}
		}
	}
}

// Stop permanently stops the watcher.
func (w *Watcher) Stop() error {
	if w.running.Load() {
		close(w.stop)
	}
	return nil
}

// Status returns the watcher's current state.
func (w *Watcher) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Status{
		ChainID:   w.cfg.ChainID,
		Running:   w.running.Load(),
		Halted:    w.halted,
		LastCheck: w.lastCheck,
		LastError: w.lastError,
	}
}

// runTick executes one reconciliation cycle. It returns an error only for
// plan/block query failures; the caller applies the configured policy.
// Persistence and alert-delivery failures are reported and swallowed.
func (w *Watcher) runTick(ctx context.Context) error {
	w.log.Debug("fetching upgrade plan")
	plan, err := w.cfg.Client.CurrentPlan(ctx)
	if err != nil {
		w.reportQueryError("upgrade plan request failed", err)
		return err
	}

	now := time.Now()
	w.cfg.Metrics.RecordCheck(w.cfg.ChainID, now)
	w.setLastCheck(now)

	if plan == nil {
		w.log.Debug("no current upgrade plan")
		return nil
	}

	rec, err := w.cfg.Ledger.Get(ctx, w.cfg.ChainID)
	if err != nil {
		// No alert decisions against unknown state; skip the tick.
		w.log.Error("failed to read ledger", "error", err)
		w.cfg.Metrics.IncrementError(w.cfg.ChainID, errDatabaseRead)
		return nil
	}

	if rec != nil && rec.UpgradeHeight >= plan.Height {
		// Same or already-tracked upgrade: at most a one-time reminder.
		return w.maybeRemind(ctx, plan, rec)
	}

	// New upgrade: notify, then record it (which resets the reminder flag).
	if err := w.cfg.Sink.SendUpgradeNotice(ctx, w.cfg.ChainID, plan); err != nil {
		w.reportAlertFailure(ctx, redisclient.AlertNotice, plan, err)
	}
	if err := w.cfg.Ledger.UpsertUpgrade(ctx, w.cfg.ChainID, plan.Height); err != nil {
		w.log.Error("failed to update ledger with new upgrade", "error", err)
		w.cfg.Metrics.IncrementError(w.cfg.ChainID, errDatabaseUpdate)
	}
	return nil
}

func (w *Watcher) maybeRemind(
	ctx context.Context,
	plan *domain.UpgradePlan,
	rec *domain.LedgerRecord,
) error {
	currentHeight, err := w.cfg.Client.LatestHeight(ctx)
	if err != nil {
		w.reportQueryError("block request failed", err)
		return err
	}

	if rec.ReminderSent {
		w.log.Debug("no new upgrade plan")
		return nil
	}
	if rec.UpgradeHeight-currentHeight > w.cfg.ReminderBlocks {
		w.log.Debug("no new upgrade plan")
		return nil
	}

	w.log.Debug(
		"upgrade closer than reminder threshold",
		"blocks_remaining", rec.UpgradeHeight-currentHeight,
		"threshold", w.cfg.ReminderBlocks,
	)

	if err := w.cfg.Sink.SendReminder(ctx, w.cfg.ChainID, plan, currentHeight); err != nil {
		w.reportAlertFailure(ctx, redisclient.AlertReminder, plan, err)
	}
	// Mark regardless of delivery outcome: one reminder per tracked height.
	if err := w.cfg.Ledger.MarkReminderSent(ctx, w.cfg.ChainID); err != nil {
		w.log.Error("failed to update ledger with sent reminder", "error", err)
		w.cfg.Metrics.IncrementError(w.cfg.ChainID, errDatabaseUpdate)
	}
	return nil
}

func (w *Watcher) reportQueryError(msg string, err error) {
	kind := string(chain.KindOf(err))
	if kind == "" {
		kind = "query_failed"
	}
	w.log.Error(msg, "error", err)
	w.cfg.Metrics.IncrementError(w.cfg.ChainID, kind)
	w.setLastError(err.Error())
}

func (w *Watcher) reportAlertFailure(
	ctx context.Context,
	kind redisclient.AlertKind,
	plan *domain.UpgradePlan,
	err error,
) {
	w.log.Error("alert delivery failed", "kind", kind, "error", err)
	w.cfg.Metrics.IncrementError(w.cfg.ChainID, errAlertDelivery)
	w.setLastError(err.Error())

	if w.cfg.Journal == nil {
		return
	}
	entry := redisclient.FailedAlert{
		ChainID:       w.cfg.ChainID,
		Kind:          kind,
		UpgradeName:   plan.Name,
		UpgradeHeight: plan.Height,
		Error:         err.Error(),
	}
	if jerr := w.cfg.Journal.RecordFailure(ctx, entry); jerr != nil {
		w.log.Warn("failed to journal alert failure", "error", jerr)
	}
}

func (w *Watcher) setLastCheck(t time.Time) {
	w.mu.Lock()
	w.lastCheck = t
	w.mu.Unlock()
}

func (w *Watcher) setLastError(msg string) {
	w.mu.Lock()
	w.lastError = msg
	w.mu.Unlock()
}

func (w *Watcher) setHalted(halted bool) {
	w.mu.Lock()
	w.halted = halted
	w.mu.Unlock()
}
