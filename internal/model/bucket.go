package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Period is a bucket length in seconds.
type Period uint32

const (
	PeriodFiveMinutes Period = 300
	PeriodHour        Period = 3600
	PeriodDay         Period = 86400
)

// Periods lists every bucket length maintained by the ledger.
var Periods = []Period{PeriodFiveMinutes, PeriodHour, PeriodDay}

// Candle is the price and liquidity part shared by pool and token buckets.
type Candle struct {
	Period      Period          `json:"period"`
	PeriodStart uint64          `json:"period_start"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Liquidity   *big.Int        `json:"liquidity"`
	TxCount     uint64          `json:"tx_count"`
}

// PoolBucket is a time bucket of pool activity. Price is token0 in token1.
type PoolBucket struct {
	Candle
	ID                   string   `json:"id"`
	PoolKey              string   `json:"pool_key"`
	Volume0              *big.Int `json:"volume0"`
	Volume1              *big.Int `json:"volume1"`
	Fees0                *big.Int `json:"fees0"`
	Fees1                *big.Int `json:"fees1"`
	TVL0                 *big.Int `json:"tvl0"`
	TVL1                 *big.Int `json:"tvl1"`
	SwapCount            uint64   `json:"swap_count"`
	ModifyLiquidityCount uint64   `json:"modify_liquidity_count"`
	DonateCount          uint64   `json:"donate_count"`
}

// TokenBucket is a time bucket of token activity across pools.
type TokenBucket struct {
	Candle
	ID        string   `json:"id"`
	TokenKey  string   `json:"token_key"`
	Volume    *big.Int `json:"volume"`
	Fees      *big.Int `json:"fees"`
	TVL       *big.Int `json:"tvl"`
	SwapCount uint64   `json:"swap_count"`
}
