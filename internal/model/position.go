package model

import "math/big"

// Position is one owner's liquidity over a tick range of a pool.
type Position struct {
	ID                   string   `json:"id"`
	PoolKey              string   `json:"pool_key"`
	Owner                string   `json:"owner"`
	TickLower            int32    `json:"tick_lower"`
	TickUpper            int32    `json:"tick_upper"`
	Liquidity            *big.Int `json:"liquidity"`
	FeeGrowthInside0Last *big.Int `json:"fee_growth_inside0_last"`
	FeeGrowthInside1Last *big.Int `json:"fee_growth_inside1_last"`
	Fees0                *big.Int `json:"fees0"`
	Fees1                *big.Int `json:"fees1"`
	Deposited0           *big.Int `json:"deposited0"`
	Deposited1           *big.Int `json:"deposited1"`
	Withdrawn0           *big.Int `json:"withdrawn0"`
	Withdrawn1           *big.Int `json:"withdrawn1"`
	ModifyLiquidityCount uint64   `json:"modify_liquidity_count"`
	CreatedAtBlock       uint64   `json:"created_at_block"`
	CreatedAtTimestamp   uint64   `json:"created_at_timestamp"`
}

// LiquidityProvider aggregates all positions of one address in a pool.
type LiquidityProvider struct {
	ID                   string   `json:"id"`
	PoolKey              string   `json:"pool_key"`
	Address              string   `json:"address"`
	Deposited0           *big.Int `json:"deposited0"`
	Deposited1           *big.Int `json:"deposited1"`
	Withdrawn0           *big.Int `json:"withdrawn0"`
	Withdrawn1           *big.Int `json:"withdrawn1"`
	Fees0                *big.Int `json:"fees0"`
	Fees1                *big.Int `json:"fees1"`
	PositionCount        uint64   `json:"position_count"`
	ActivePositionCount  uint64   `json:"active_position_count"`
	ModifyLiquidityCount uint64   `json:"modify_liquidity_count"`
}
