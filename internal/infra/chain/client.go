package chain

import (
	"context"

	"github.com/vietddude/upgradewatch/internal/core/domain"
)

// Client performs the two read-only node queries the watcher needs. Pure
// request/response; no retries (the next tick is the retry).
type Client interface {
	// CurrentPlan returns the scheduled upgrade plan, or nil when the node
	// reports none. A nil plan is a valid state, not an error.
	CurrentPlan(ctx context.Context) (*domain.UpgradePlan, error)

	// LatestHeight returns the latest block height observed by the node.
	LatestHeight(ctx context.Context) (int64, error)
}
