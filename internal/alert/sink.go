package alert

import (
	"context"

	"github.com/vietddude/upgradewatch/internal/core/domain"
)

// Sink delivers upgrade alerts to an external channel. Delivery is best
// effort: failures are returned to the caller, never retried here.
type Sink interface {
	// SendUpgradeNotice announces a newly observed upgrade plan.
	SendUpgradeNotice(ctx context.Context, chainID string, plan *domain.UpgradePlan) error

	// SendReminder sends the one-time pre-upgrade reminder, including the
	// current height and the remaining block count.
	SendReminder(
		ctx context.Context,
		chainID string,
		plan *domain.UpgradePlan,
		currentHeight int64,
	) error
}
