package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Pool is the ledger state of one concentrated-liquidity pool.
type Pool struct {
	ID          string `json:"id"`
	ChainID     uint64 `json:"chain_id"`
	PoolID      string `json:"pool_id"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	FeeTier     uint32 `json:"fee_tier"`
	TickSpacing int32  `json:"tick_spacing"`
	Hooks       string `json:"hooks"`

	Tick             int32    `json:"tick"`
	SqrtPrice        *big.Int `json:"sqrt_price"`
	Liquidity        *big.Int `json:"liquidity"`
	FeeGrowthGlobal0 *big.Int `json:"fee_growth_global0"`
	FeeGrowthGlobal1 *big.Int `json:"fee_growth_global1"`

	Volume0     *big.Int        `json:"volume0"`
	Volume1     *big.Int        `json:"volume1"`
	Fees0       *big.Int        `json:"fees0"`
	Fees1       *big.Int        `json:"fees1"`
	TVL0        *big.Int        `json:"tvl0"`
	TVL1        *big.Int        `json:"tvl1"`
	Token0Price decimal.Decimal `json:"token0_price"`
	Token1Price decimal.Decimal `json:"token1_price"`

	TxCount              uint64 `json:"tx_count"`
	SwapCount            uint64 `json:"swap_count"`
	ModifyLiquidityCount uint64 `json:"modify_liquidity_count"`
	DonateCount          uint64 `json:"donate_count"`
	PositionCount        uint64 `json:"position_count"`
	ActivePositionCount  uint64 `json:"active_position_count"`

	CreatedAtBlock     uint64 `json:"created_at_block"`
	CreatedAtTimestamp uint64 `json:"created_at_timestamp"`
	LastBlock          uint64 `json:"last_block"`
	LastLogIndex       uint64 `json:"last_log_index"`
}

// HasHooks reports whether the pool declares a hook contract.
func (p Pool) HasHooks() bool {
	return !IsZeroAddress(p.Hooks)
}

// Applied reports whether an event at (block, logIndex) is at or before the
// last event applied to the pool.
func (p Pool) Applied(block, logIndex uint64) bool {
	if block != p.LastBlock {
		return block < p.LastBlock
	}
	return logIndex <= p.LastLogIndex
}
