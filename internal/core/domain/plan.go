package domain

// UpgradePlan is a scheduled chain upgrade as reported by the node's
// governance endpoint. It is fetched fresh every tick and never persisted.
type UpgradePlan struct {
	Name   string
	Height int64
}

// RemainingBlocks returns how many blocks are left until the upgrade
// executes, given the current chain height.
func (p *UpgradePlan) RemainingBlocks(currentHeight int64) int64 {
	return p.Height - currentHeight
}
