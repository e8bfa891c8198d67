package memory

import (
	"context"
	"sync"

	"github.com/vietddude/upgradewatch/internal/core/domain"
)

// LedgerRepo is an in-memory ledger, used when no storage backend is
// configured and in tests. State does not survive restarts.
type LedgerRepo struct {
	mu      sync.RWMutex
	records map[string]*domain.LedgerRecord
}

func NewLedgerRepo() *LedgerRepo {
	return &LedgerRepo{records: make(map[string]*domain.LedgerRecord)}
}

func (r *LedgerRepo) Get(ctx context.Context, chainID string) (*domain.LedgerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[chainID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *LedgerRepo) UpsertUpgrade(ctx context.Context, chainID string, height int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[chainID] = &domain.LedgerRecord{
		ChainID:       chainID,
		UpgradeHeight: height,
		ReminderSent:  false,
	}
	return nil
}

func (r *LedgerRepo) MarkReminderSent(ctx context.Context, chainID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[chainID]; ok {
		rec.ReminderSent = true
	}
	return nil
}
