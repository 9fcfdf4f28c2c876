package model

// HookStats aggregates activity of pools sharing one hook contract.
type HookStats struct {
	ID                   string `json:"id"`
	ChainID              uint64 `json:"chain_id"`
	Address              string `json:"address"`
	PoolCount            uint64 `json:"pool_count"`
	TxCount              uint64 `json:"tx_count"`
	SwapCount            uint64 `json:"swap_count"`
	ModifyLiquidityCount uint64 `json:"modify_liquidity_count"`
	DonateCount          uint64 `json:"donate_count"`
}
