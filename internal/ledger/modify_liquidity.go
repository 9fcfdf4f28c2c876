package ledger

import (
	"fmt"
	"math/big"

	"liquidityLedger/internal/clmath"
	"liquidityLedger/internal/model"
)

func applyModifyLiquidity(tx *txn) error {
	p, ok := tx.ev.Payload.(ModifyLiquidity)
	if !ok {
		return fmt.Errorf("%w: payload %T", ErrUnknownEvent, tx.ev.Payload)
	}
	delta := orZero(p.LiquidityDelta)
	pool := &tx.pool

	amounts, err := clmath.ComputeAmounts(delta, p.TickLower, p.TickUpper, pool.SqrtPrice)
	if err != nil {
		return fmt.Errorf("compute amounts: %w", err)
	}

	pool.TVL0 = add(pool.TVL0, amounts.Amount0)
	pool.TVL1 = add(pool.TVL1, amounts.Amount1)
	tx.token0.TVL = add(tx.token0.TVL, amounts.Amount0)
	tx.token1.TVL = add(tx.token1.TVL, amounts.Amount1)

	if p.TickLower <= pool.Tick && pool.Tick < p.TickUpper {
		pool.Liquidity = add(pool.Liquidity, delta)
		if pool.Liquidity.Sign() < 0 {
			return fmt.Errorf("%w: pool %s active liquidity", ErrNegativeLiquidity, pool.ID)
		}
	}

	pos, found := tx.snap.Position.Get()
	isNew := !found
	if isNew {
		pos = newPosition(tx.ev, pool.ID, p)
	}
	provider := tx.snap.Provider.OrElse(newProvider(pool.ID, p.Sender))

	lower := tx.tick(p.TickLower)
	upper := tx.tick(p.TickUpper)
	lower.LiquidityGross = add(lower.LiquidityGross, delta)
	upper.LiquidityGross = add(upper.LiquidityGross, delta)
	if lower.LiquidityGross.Sign() < 0 || upper.LiquidityGross.Sign() < 0 {
		return fmt.Errorf("%w: ticks [%d, %d) gross liquidity", ErrNegativeLiquidity, p.TickLower, p.TickUpper)
	}
	lower.LiquidityNet = add(lower.LiquidityNet, delta)
	upper.LiquidityNet = sub(upper.LiquidityNet, delta)
	if isNew && delta.Sign() > 0 {
		lower.PositionCount++
		upper.PositionCount++
	}

	inside0 := clmath.FeeGrowthInside(pool.FeeGrowthGlobal0, lower.FeeGrowthOutside0, upper.FeeGrowthOutside0, p.TickLower, p.TickUpper, pool.Tick)
	inside1 := clmath.FeeGrowthInside(pool.FeeGrowthGlobal1, lower.FeeGrowthOutside1, upper.FeeGrowthOutside1, p.TickLower, p.TickUpper, pool.Tick)

	prevLiquidity := orZero(pos.Liquidity)
	if !isNew && prevLiquidity.Sign() > 0 {
		fees0 := clmath.AccruedFees(prevLiquidity, inside0, pos.FeeGrowthInside0Last)
		fees1 := clmath.AccruedFees(prevLiquidity, inside1, pos.FeeGrowthInside1Last)
		pos.Fees0 = add(pos.Fees0, fees0)
		pos.Fees1 = add(pos.Fees1, fees1)
		provider.Fees0 = add(provider.Fees0, fees0)
		provider.Fees1 = add(provider.Fees1, fees1)
	}

	pos.Liquidity = add(prevLiquidity, delta)
	if pos.Liquidity.Sign() < 0 {
		return fmt.Errorf("%w: position %s", ErrNegativeLiquidity, pos.ID)
	}
	pos.FeeGrowthInside0Last = inside0
	pos.FeeGrowthInside1Last = inside1

	switch delta.Sign() {
	case 1:
		pos.Deposited0 = add(pos.Deposited0, amounts.Amount0Abs)
		pos.Deposited1 = add(pos.Deposited1, amounts.Amount1Abs)
		provider.Deposited0 = add(provider.Deposited0, amounts.Amount0Abs)
		provider.Deposited1 = add(provider.Deposited1, amounts.Amount1Abs)
	case -1:
		pos.Withdrawn0 = add(pos.Withdrawn0, amounts.Amount0Abs)
		pos.Withdrawn1 = add(pos.Withdrawn1, amounts.Amount1Abs)
		provider.Withdrawn0 = add(provider.Withdrawn0, amounts.Amount0Abs)
		provider.Withdrawn1 = add(provider.Withdrawn1, amounts.Amount1Abs)
	}

	if isNew {
		provider.PositionCount++
		pool.PositionCount++
		tx.token0.PositionCount++
		tx.token1.PositionCount++
	}
	wasActive := prevLiquidity.Sign() > 0
	isActive := pos.Liquidity.Sign() > 0
	switch {
	case !wasActive && isActive:
		pool.ActivePositionCount++
		provider.ActivePositionCount++
	case wasActive && !isActive:
		pool.ActivePositionCount = decrement(pool.ActivePositionCount)
		provider.ActivePositionCount = decrement(provider.ActivePositionCount)
	}

	pos.ModifyLiquidityCount++
	provider.ModifyLiquidityCount++
	pool.ModifyLiquidityCount++
	tx.countTx()
	if tx.hook != nil {
		tx.hook.ModifyLiquidityCount++
	}

	tx.putTick(lower)
	tx.putTick(upper)
	tx.position = &pos
	tx.provider = &provider
	tx.activity.modify = true

	tx.out.ModifyLiquidities = append(tx.out.ModifyLiquidities, model.ModifyLiquidityRecord{
		EventRef:       tx.eventRef(p.Sender),
		TickLower:      p.TickLower,
		TickUpper:      p.TickUpper,
		LiquidityDelta: copyInt(delta),
		Amount0:        amounts.Amount0,
		Amount1:        amounts.Amount1,
		Salt:           p.Salt,
	})
	return nil
}

func newPosition(ev Event, poolKey string, p ModifyLiquidity) model.Position {
	return model.Position{
		ID:                   model.PositionKey(poolKey, p.Sender, p.TickLower, p.TickUpper),
		PoolKey:              poolKey,
		Owner:                model.NormalizeAddress(p.Sender),
		TickLower:            p.TickLower,
		TickUpper:            p.TickUpper,
		Liquidity:            new(big.Int),
		FeeGrowthInside0Last: new(big.Int),
		FeeGrowthInside1Last: new(big.Int),
		Fees0:                new(big.Int),
		Fees1:                new(big.Int),
		Deposited0:           new(big.Int),
		Deposited1:           new(big.Int),
		Withdrawn0:           new(big.Int),
		Withdrawn1:           new(big.Int),
		CreatedAtBlock:       ev.BlockNumber,
		CreatedAtTimestamp:   ev.Timestamp,
	}
}

func newProvider(poolKey, address string) model.LiquidityProvider {
	return model.LiquidityProvider{
		ID:         model.ProviderKey(poolKey, address),
		PoolKey:    poolKey,
		Address:    model.NormalizeAddress(address),
		Deposited0: new(big.Int),
		Deposited1: new(big.Int),
		Withdrawn0: new(big.Int),
		Withdrawn1: new(big.Int),
		Fees0:      new(big.Int),
		Fees1:      new(big.Int),
	}
}

func decrement(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	return v - 1
}
