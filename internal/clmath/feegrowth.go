package clmath

import "math/big"

// FeeGrowthInside returns the fee growth accumulated inside [tickLower, tickUpper)
// given the global accumulator, both boundary outside accumulators and the
// pool's current tick.
func FeeGrowthInside(global, outsideLower, outsideUpper *big.Int, tickLower, tickUpper, currentTick int32) *big.Int {
	global = orZero(global)
	outsideLower = orZero(outsideLower)
	outsideUpper = orZero(outsideUpper)

	below := outsideLower
	if currentTick < tickLower {
		below = new(big.Int).Sub(global, outsideLower)
	}
	above := outsideUpper
	if currentTick >= tickUpper {
		above = new(big.Int).Sub(global, outsideUpper)
	}

	inside := new(big.Int).Sub(global, below)
	return inside.Sub(inside, above)
}

// AccruedFees returns liquidity * (insideNow - insideLast) / 2^128 with floor
// division. The caller must snapshot insideNow as the position's new last
// value after every accrual.
func AccruedFees(liquidity, insideNow, insideLast *big.Int) *big.Int {
	liquidity = orZero(liquidity)
	if liquidity.Sign() == 0 {
		return new(big.Int)
	}
	delta := new(big.Int).Sub(orZero(insideNow), orZero(insideLast))
	delta.Mul(delta, liquidity)
	return floorDiv(delta, Q128)
}

// ApplyFeeGrowth distributes feesCollected over activeLiquidity. With no
// active liquidity the global accumulator is returned unchanged and the fees
// are not attributed to any position.
func ApplyFeeGrowth(global, feesCollected, activeLiquidity *big.Int) *big.Int {
	global = orZero(global)
	if activeLiquidity == nil || activeLiquidity.Sign() <= 0 {
		return new(big.Int).Set(global)
	}
	growth := new(big.Int).Lsh(orZero(feesCollected), 128)
	growth.Quo(growth, activeLiquidity)
	return growth.Add(growth, global)
}

// Flip returns the new outside accumulator of a tick being crossed.
func Flip(global, outside *big.Int) *big.Int {
	return new(big.Int).Sub(orZero(global), orZero(outside))
}

func floorDiv(x, y *big.Int) *big.Int {
	q, m := new(big.Int).QuoRem(x, y, new(big.Int))
	if m.Sign() != 0 && (m.Sign() < 0) != (y.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
