package storage

import (
	"context"

	"github.com/vietddude/upgradewatch/internal/core/domain"
)

// LedgerRepository handles persisted upgrade dedup state. One record per
// chain id; storage must serialize concurrent writes per chain id.
type LedgerRepository interface {
	// Get retrieves the ledger record for a chain. Returns nil (no error)
	// when the chain has never tracked an upgrade.
	Get(ctx context.Context, chainID string) (*domain.LedgerRecord, error)

	// UpsertUpgrade writes a record with the given upgrade height and
	// is_reminder_sent = false, replacing any prior record for the chain.
	UpsertUpgrade(ctx context.Context, chainID string, height int64) error

	// MarkReminderSent sets is_reminder_sent = true on the existing record.
	// A missing record is a no-op.
	MarkReminderSent(ctx context.Context, chainID string) error
}
