package ledger

import (
	"fmt"

	"liquidityLedger/internal/clmath"
	"liquidityLedger/internal/model"
)

// applyDonate credits donated amounts to the pool. Fee growth only moves
// while liquidity is active; otherwise the donation shows up in tvl alone.
func applyDonate(tx *txn) error {
	p, ok := tx.ev.Payload.(Donate)
	if !ok {
		return fmt.Errorf("%w: payload %T", ErrUnknownEvent, tx.ev.Payload)
	}
	pool := &tx.pool
	amount0 := orZero(p.Amount0)
	amount1 := orZero(p.Amount1)

	pool.TVL0 = add(pool.TVL0, amount0)
	pool.TVL1 = add(pool.TVL1, amount1)
	tx.token0.TVL = add(tx.token0.TVL, amount0)
	tx.token1.TVL = add(tx.token1.TVL, amount1)

	if pool.Liquidity != nil && pool.Liquidity.Sign() > 0 {
		pool.Fees0 = add(pool.Fees0, amount0)
		pool.Fees1 = add(pool.Fees1, amount1)
		pool.FeeGrowthGlobal0 = clmath.ApplyFeeGrowth(pool.FeeGrowthGlobal0, amount0, pool.Liquidity)
		pool.FeeGrowthGlobal1 = clmath.ApplyFeeGrowth(pool.FeeGrowthGlobal1, amount1, pool.Liquidity)
		tx.token0.Fees = add(tx.token0.Fees, amount0)
		tx.token1.Fees = add(tx.token1.Fees, amount1)
		tx.activity.fees0 = copyInt(amount0)
		tx.activity.fees1 = copyInt(amount1)
	}

	pool.DonateCount++
	tx.countTx()
	if tx.hook != nil {
		tx.hook.DonateCount++
	}
	tx.activity.donate = true

	tx.out.Donates = append(tx.out.Donates, model.DonateRecord{
		EventRef: tx.eventRef(p.Sender),
		Amount0:  copyInt(amount0),
		Amount1:  copyInt(amount1),
	})
	return nil
}
