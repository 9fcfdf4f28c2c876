package ledger

import (
	"fmt"

	"liquidityLedger/internal/clmath"
	"liquidityLedger/internal/model"
)

func applySwap(tx *txn) error {
	p, ok := tx.ev.Payload.(Swap)
	if !ok {
		return fmt.Errorf("%w: payload %T", ErrUnknownEvent, tx.ev.Payload)
	}
	pool := &tx.pool

	// Event amounts are the swapper's deltas; the pool moves the opposite way.
	poolDelta0 := neg(p.Amount0)
	poolDelta1 := neg(p.Amount1)
	volume0 := abs(p.Amount0)
	volume1 := abs(p.Amount1)

	feeRate := p.Fee
	if feeRate == 0 {
		feeRate = pool.FeeTier
	}
	fees0 := feeFromAmount(volume0, feeRate)
	fees1 := feeFromAmount(volume1, feeRate)

	// Growth is spread over the liquidity active before the swap.
	pool.FeeGrowthGlobal0 = clmath.ApplyFeeGrowth(pool.FeeGrowthGlobal0, fees0, pool.Liquidity)
	pool.FeeGrowthGlobal1 = clmath.ApplyFeeGrowth(pool.FeeGrowthGlobal1, fees1, pool.Liquidity)

	crossed := clmath.CrossedTicks(pool.Tick, p.Tick, pool.TickSpacing, tx.initialized)
	for _, idx := range crossed {
		t := tx.ticks[idx]
		t.FeeGrowthOutside0 = clmath.Flip(pool.FeeGrowthGlobal0, t.FeeGrowthOutside0)
		t.FeeGrowthOutside1 = clmath.Flip(pool.FeeGrowthGlobal1, t.FeeGrowthOutside1)
		tx.putTick(t)
	}

	pool.Liquidity = copyInt(p.Liquidity)
	pool.Tick = p.Tick
	pool.SqrtPrice = copyInt(p.SqrtPrice)

	pool.Volume0 = add(pool.Volume0, volume0)
	pool.Volume1 = add(pool.Volume1, volume1)
	pool.Fees0 = add(pool.Fees0, fees0)
	pool.Fees1 = add(pool.Fees1, fees1)
	pool.TVL0 = add(pool.TVL0, poolDelta0)
	pool.TVL1 = add(pool.TVL1, poolDelta1)

	tx.token0.Volume = add(tx.token0.Volume, volume0)
	tx.token1.Volume = add(tx.token1.Volume, volume1)
	tx.token0.Fees = add(tx.token0.Fees, fees0)
	tx.token1.Fees = add(tx.token1.Fees, fees1)
	tx.token0.TVL = add(tx.token0.TVL, poolDelta0)
	tx.token1.TVL = add(tx.token1.TVL, poolDelta1)
	tx.token0.SwapCount++
	tx.token1.SwapCount++

	pool.SwapCount++
	tx.countTx()
	if tx.hook != nil {
		tx.hook.SwapCount++
	}

	tx.activity = activity{
		volume0: volume0,
		volume1: volume1,
		fees0:   fees0,
		fees1:   fees1,
		swap:    true,
	}
	tx.out.Swaps = append(tx.out.Swaps, model.SwapRecord{
		EventRef:  tx.eventRef(p.Sender),
		Amount0:   copyInt(p.Amount0),
		Amount1:   copyInt(p.Amount1),
		SqrtPrice: copyInt(p.SqrtPrice),
		Liquidity: copyInt(p.Liquidity),
		Tick:      p.Tick,
		Fee:       feeRate,
		Fees0:     fees0,
		Fees1:     fees1,
	})
	return nil
}
