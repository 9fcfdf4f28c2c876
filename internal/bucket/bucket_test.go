package bucket

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityLedger/internal/model"
)

func TestStart(t *testing.T) {
	assert.Equal(t, uint64(1_700_000_100), Start(1_700_000_123, model.PeriodFiveMinutes))
	assert.Equal(t, uint64(1_699_999_200), Start(1_700_000_123, model.PeriodHour))
	assert.Equal(t, uint64(1_699_920_000), Start(1_700_000_123, model.PeriodDay))
	assert.Equal(t, uint64(3600), Start(3600, model.PeriodHour))
}

func TestUpsertPoolOpensAndTracksExtremes(t *testing.T) {
	poolKey := model.PoolKey(1, "0x01")
	prices := []string{"1.5", "2.25", "0.75", "1.1"}

	var (
		current model.PoolBucket
		opt     = model.None[model.PoolBucket]()
	)
	for i, p := range prices {
		current = UpsertPool(opt, poolKey, 3600+uint64(i), model.PeriodHour, decimal.RequireFromString(p), big.NewInt(int64(100*(i+1))))
		opt = model.Some(current)
	}

	assert.Equal(t, model.BucketKey(poolKey, model.PeriodHour, 3600), current.ID)
	assert.Equal(t, uint64(3600), current.PeriodStart)
	assert.True(t, current.Open.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, current.High.Equal(decimal.RequireFromString("2.25")))
	assert.True(t, current.Low.Equal(decimal.RequireFromString("0.75")))
	assert.True(t, current.Close.Equal(decimal.RequireFromString("1.1")))
	assert.Equal(t, uint64(4), current.TxCount)
	assert.Equal(t, 0, current.Liquidity.Cmp(big.NewInt(400)))
	require.NotNil(t, current.Volume0)
	assert.Equal(t, 0, current.Volume0.Sign())
}

func TestTouchHighLowMonotonic(t *testing.T) {
	prices := []int64{5, 3, 9, 1, 7, 7, 2, 10}
	var (
		c     model.Candle
		found bool
	)
	for _, p := range prices {
		prevHigh, prevLow := c.High, c.Low
		c = Touch(c, found, 60, model.PeriodFiveMinutes, decimal.NewFromInt(p), nil)
		if found {
			assert.True(t, c.High.GreaterThanOrEqual(prevHigh))
			assert.True(t, c.Low.LessThanOrEqual(prevLow))
		}
		assert.True(t, c.Close.Equal(decimal.NewFromInt(p)))
		found = true
	}
	assert.True(t, c.Open.Equal(decimal.NewFromInt(5)))
	assert.True(t, c.High.Equal(decimal.NewFromInt(10)))
	assert.True(t, c.Low.Equal(decimal.NewFromInt(1)))
}

func TestUpsertTokenDoesNotAliasInput(t *testing.T) {
	tokenKey := model.TokenKey(1, "0x02")
	first := UpsertToken(model.None[model.TokenBucket](), tokenKey, 86400*3+5, model.PeriodDay, decimal.NewFromInt(2))
	first.Volume = big.NewInt(10)

	second := UpsertToken(model.Some(first), tokenKey, 86400*3+50, model.PeriodDay, decimal.NewFromInt(3))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, uint64(1), first.TxCount)
	assert.Equal(t, uint64(2), second.TxCount)
	assert.Equal(t, 0, second.Volume.Cmp(big.NewInt(10)))
}
