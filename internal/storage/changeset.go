package storage

import "liquidityLedger/internal/model"

// Changeset is every write produced by one event. Entities are full
// replacements; records are append-only.
type Changeset struct {
	Pools        []model.Pool
	Tokens       []model.Token
	Ticks        []model.Tick
	Positions    []model.Position
	Providers    []model.LiquidityProvider
	Hooks        []model.HookStats
	PoolBuckets  []model.PoolBucket
	TokenBuckets []model.TokenBucket

	Transactions      []model.Transaction
	Swaps             []model.SwapRecord
	ModifyLiquidities []model.ModifyLiquidityRecord
	Donates           []model.DonateRecord
}

// Empty reports whether the changeset carries no writes.
func (c Changeset) Empty() bool {
	return c.Writes() == 0
}

// Writes counts the records in the changeset.
func (c Changeset) Writes() int {
	return len(c.Pools) + len(c.Tokens) + len(c.Ticks) + len(c.Positions) +
		len(c.Providers) + len(c.Hooks) + len(c.PoolBuckets) + len(c.TokenBuckets) +
		len(c.Transactions) + len(c.Swaps) + len(c.ModifyLiquidities) + len(c.Donates)
}
