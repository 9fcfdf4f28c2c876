package model

import "math/big"

// Token aggregates activity of one token across all pools on a chain.
// Symbol, Name and Decimals never change once the record exists.
type Token struct {
	ID       string `json:"id"`
	ChainID  uint64 `json:"chain_id"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`

	Volume *big.Int `json:"volume"`
	Fees   *big.Int `json:"fees"`
	TVL    *big.Int `json:"tvl"`

	PoolCount     uint64 `json:"pool_count"`
	PositionCount uint64 `json:"position_count"`
	TxCount       uint64 `json:"tx_count"`
	SwapCount     uint64 `json:"swap_count"`

	CreatedAtBlock     uint64 `json:"created_at_block"`
	CreatedAtTimestamp uint64 `json:"created_at_timestamp"`
}
