package model

import "math/big"

// Tick is an initialized tick of a pool. The record existing is what makes
// the tick initialized.
type Tick struct {
	ID                 string   `json:"id"`
	PoolKey            string   `json:"pool_key"`
	TickIdx            int32    `json:"tick_idx"`
	LiquidityGross     *big.Int `json:"liquidity_gross"`
	LiquidityNet       *big.Int `json:"liquidity_net"`
	FeeGrowthOutside0  *big.Int `json:"fee_growth_outside0"`
	FeeGrowthOutside1  *big.Int `json:"fee_growth_outside1"`
	PositionCount      uint64   `json:"position_count"`
	CreatedAtBlock     uint64   `json:"created_at_block"`
	CreatedAtTimestamp uint64   `json:"created_at_timestamp"`
}
