package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertKind distinguishes the two message shapes in journal entries.
type AlertKind string

const (
	AlertNotice   AlertKind = "upgrade_notice"
	AlertReminder AlertKind = "reminder"
)

// FailedAlert is one alert delivery that the sink could not complete. The
// watcher does not retry deliveries; entries exist so an operator can replay
// them by hand.
type FailedAlert struct {
	ID            string    `json:"id"`
	ChainID       string    `json:"chain_id"`
	Kind          AlertKind `json:"kind"`
	UpgradeName   string    `json:"upgrade_name"`
	UpgradeHeight int64     `json:"upgrade_height"`
	Error         string    `json:"error"`
	FailedAt      time.Time `json:"failed_at"`
}

func journalKey(chainID string) string {
	return fmt.Sprintf("failed_alerts:%s", chainID)
}

// RecordFailure appends a failed delivery to the chain's journal. The entry
// id is assigned here.
func (c *Client) RecordFailure(ctx context.Context, entry FailedAlert) error {
	entry.ID = uuid.NewString()
	if entry.FailedAt.IsZero() {
		entry.FailedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	if err := c.rdb.LPush(ctx, journalKey(entry.ChainID), data).Err(); err != nil {
		return fmt.Errorf("lpush failed: %w", err)
	}
	return nil
}

// Pending returns all journaled failures for a chain, newest first.
func (c *Client) Pending(ctx context.Context, chainID string) ([]FailedAlert, error) {
	raw, err := c.rdb.LRange(ctx, journalKey(chainID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}

	entries := make([]FailedAlert, 0, len(raw))
	for _, item := range raw {
		var entry FailedAlert
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("invalid journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear removes all journaled failures for a chain (after operator replay).
func (c *Client) Clear(ctx context.Context, chainID string) error {
	return c.rdb.Del(ctx, journalKey(chainID)).Err()
}
