// Package bucket maintains fixed-period OHLC rollups for pools and tokens.
package bucket

import (
	"math/big"

	"github.com/shopspring/decimal"

	"liquidityLedger/internal/model"
)

// Start returns the first second of the period containing ts.
func Start(ts uint64, period model.Period) uint64 {
	if period == 0 {
		return ts
	}
	p := uint64(period)
	return ts / p * p
}

// Touch folds one observation into a candle. A zero-value candle (found ==
// false) is opened at price. Volume-like deltas are left to the caller.
func Touch(prev model.Candle, found bool, ts uint64, period model.Period, price decimal.Decimal, liquidity *big.Int) model.Candle {
	c := prev
	if !found {
		c = model.Candle{
			Period:      period,
			PeriodStart: Start(ts, period),
			Open:        price,
			High:        price,
			Low:         price,
		}
	}
	if price.GreaterThan(c.High) {
		c.High = price
	}
	if price.LessThan(c.Low) {
		c.Low = price
	}
	c.Close = price
	c.Liquidity = copyInt(liquidity)
	c.TxCount++
	return c
}

// UpsertPool returns the pool bucket for ts after one touch.
func UpsertPool(existing model.Option[model.PoolBucket], poolKey string, ts uint64, period model.Period, price decimal.Decimal, liquidity *big.Int) model.PoolBucket {
	b, found := existing.Get()
	if !found {
		start := Start(ts, period)
		b = model.PoolBucket{
			ID:      model.BucketKey(poolKey, period, start),
			PoolKey: poolKey,
			Volume0: new(big.Int),
			Volume1: new(big.Int),
			Fees0:   new(big.Int),
			Fees1:   new(big.Int),
			TVL0:    new(big.Int),
			TVL1:    new(big.Int),
		}
	}
	b.Candle = Touch(b.Candle, found, ts, period, price, liquidity)
	return b
}

// UpsertToken returns the token bucket for ts after one touch. Token buckets
// carry no liquidity.
func UpsertToken(existing model.Option[model.TokenBucket], tokenKey string, ts uint64, period model.Period, price decimal.Decimal) model.TokenBucket {
	b, found := existing.Get()
	if !found {
		start := Start(ts, period)
		b = model.TokenBucket{
			ID:       model.BucketKey(tokenKey, period, start),
			TokenKey: tokenKey,
			Volume:   new(big.Int),
			Fees:     new(big.Int),
			TVL:      new(big.Int),
		}
	}
	b.Candle = Touch(b.Candle, found, ts, period, price, nil)
	return b
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// Key returns the bucket key of entityKey for the period containing ts.
func Key(entityKey string, ts uint64, period model.Period) string {
	return model.BucketKey(entityKey, period, Start(ts, period))
}
