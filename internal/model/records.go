package model

import "math/big"

// Transaction is one chain transaction that touched the ledger.
type Transaction struct {
	ID          string `json:"id"`
	ChainID     uint64 `json:"chain_id"`
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   uint64 `json:"timestamp"`
}

// EventRef locates an applied event on chain.
type EventRef struct {
	ID          string `json:"id"`
	ChainID     uint64 `json:"chain_id"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   uint64 `json:"timestamp"`
	PoolKey     string `json:"pool_key"`
	Sender      string `json:"sender"`
}

// SwapRecord is an immutable row per applied swap.
type SwapRecord struct {
	EventRef
	Amount0   *big.Int `json:"amount0"`
	Amount1   *big.Int `json:"amount1"`
	SqrtPrice *big.Int `json:"sqrt_price"`
	Liquidity *big.Int `json:"liquidity"`
	Tick      int32    `json:"tick"`
	Fee       uint32   `json:"fee"`
	Fees0     *big.Int `json:"fees0"`
	Fees1     *big.Int `json:"fees1"`
}

// ModifyLiquidityRecord is an immutable row per applied liquidity change.
type ModifyLiquidityRecord struct {
	EventRef
	TickLower      int32    `json:"tick_lower"`
	TickUpper      int32    `json:"tick_upper"`
	LiquidityDelta *big.Int `json:"liquidity_delta"`
	Amount0        *big.Int `json:"amount0"`
	Amount1        *big.Int `json:"amount1"`
	Salt           string   `json:"salt"`
}

// DonateRecord is an immutable row per applied donation.
type DonateRecord struct {
	EventRef
	Amount0 *big.Int `json:"amount0"`
	Amount1 *big.Int `json:"amount1"`
}
