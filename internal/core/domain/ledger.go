package domain

// LedgerRecord is the persisted dedup state for one chain: the last upgrade
// height we alerted on and whether its pre-upgrade reminder already fired.
// At most one record exists per chain id (insert-or-replace semantics).
type LedgerRecord struct {
	ChainID       string `db:"chain_id"`
	UpgradeHeight int64  `db:"upgrade_height"`
	ReminderSent  bool   `db:"is_reminder_sent"`
}
