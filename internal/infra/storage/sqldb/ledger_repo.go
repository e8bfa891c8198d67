package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/upgradewatch/internal/core/domain"
)

// LedgerRepo implements storage.LedgerRepository on either SQL backend.
// All statements are parameterized; Rebind translates placeholders for the
// active driver.
type LedgerRepo struct {
	db *DB
}

// NewLedgerRepo creates a SQL-backed ledger repository.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Get retrieves the ledger record for a chain, nil when absent.
func (r *LedgerRepo) Get(ctx context.Context, chainID string) (*domain.LedgerRecord, error) {
	var rec domain.LedgerRecord
	query := r.db.Rebind(
		`SELECT chain_id, upgrade_height, is_reminder_sent FROM chains WHERE chain_id = ?`,
	)
	err := r.db.GetContext(ctx, &rec, query, chainID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger record: %w", err)
	}
	return &rec, nil
}

// UpsertUpgrade replaces the chain's record with the new height and resets
// the reminder flag in the same write.
func (r *LedgerRepo) UpsertUpgrade(ctx context.Context, chainID string, height int64) error {
	query := r.db.Rebind(`
		INSERT INTO chains (chain_id, upgrade_height, is_reminder_sent)
		VALUES (?, ?, FALSE)
		ON CONFLICT (chain_id) DO UPDATE SET
			upgrade_height = excluded.upgrade_height,
			is_reminder_sent = excluded.is_reminder_sent`)
	if _, err := r.db.ExecContext(ctx, query, chainID, height); err != nil {
		return fmt.Errorf("failed to upsert upgrade: %w", err)
	}
	return nil
}

// MarkReminderSent flips the reminder flag on the existing record.
func (r *LedgerRepo) MarkReminderSent(ctx context.Context, chainID string) error {
	query := r.db.Rebind(`UPDATE chains SET is_reminder_sent = TRUE WHERE chain_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, chainID); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}
