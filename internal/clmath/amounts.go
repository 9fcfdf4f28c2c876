package clmath

import (
	"fmt"
	"math/big"
)

// Amounts is the token exposure of a liquidity change. Amount0/Amount1 carry
// the sign of the liquidity delta; the Abs fields are always non-negative.
type Amounts struct {
	Amount0    *big.Int
	Amount1    *big.Int
	Amount0Abs *big.Int
	Amount1Abs *big.Int
}

// ComputeAmounts converts a liquidity delta over [tickLower, tickUpper) into
// token deltas at the given current sqrt price.
func ComputeAmounts(liquidityDelta *big.Int, tickLower, tickUpper int32, sqrtPriceCurrent *big.Int) (Amounts, error) {
	if tickLower >= tickUpper {
		return Amounts{}, fmt.Errorf("invalid tick range [%d, %d)", tickLower, tickUpper)
	}
	sqrtLower, err := SqrtRatioAtTick(tickLower)
	if err != nil {
		return Amounts{}, fmt.Errorf("lower tick: %w", err)
	}
	sqrtUpper, err := SqrtRatioAtTick(tickUpper)
	if err != nil {
		return Amounts{}, fmt.Errorf("upper tick: %w", err)
	}

	liquidity := new(big.Int)
	if liquidityDelta != nil {
		liquidity.Abs(liquidityDelta)
	}

	abs0 := new(big.Int)
	abs1 := new(big.Int)
	switch {
	case sqrtPriceCurrent == nil || sqrtPriceCurrent.Cmp(sqrtLower) <= 0:
		abs0 = Amount0Delta(sqrtLower, sqrtUpper, liquidity)
	case sqrtPriceCurrent.Cmp(sqrtUpper) >= 0:
		abs1 = Amount1Delta(sqrtLower, sqrtUpper, liquidity)
	default:
		abs0 = Amount0Delta(sqrtPriceCurrent, sqrtUpper, liquidity)
		abs1 = Amount1Delta(sqrtLower, sqrtPriceCurrent, liquidity)
	}

	amounts := Amounts{
		Amount0:    new(big.Int).Set(abs0),
		Amount1:    new(big.Int).Set(abs1),
		Amount0Abs: abs0,
		Amount1Abs: abs1,
	}
	if liquidityDelta != nil && liquidityDelta.Sign() < 0 {
		amounts.Amount0.Neg(amounts.Amount0)
		amounts.Amount1.Neg(amounts.Amount1)
	}
	return amounts, nil
}

// Amount0Delta returns liquidity * 2^96 * (sqrtB - sqrtA) / sqrtB / sqrtA,
// truncated. The price arguments may be passed in either order.
func Amount0Delta(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	lo, hi := orderPrices(sqrtA, sqrtB)
	if lo.Sign() <= 0 || liquidity.Sign() == 0 {
		return new(big.Int)
	}
	numerator := new(big.Int).Lsh(liquidity, 96)
	numerator.Mul(numerator, new(big.Int).Sub(hi, lo))
	numerator.Quo(numerator, hi)
	return numerator.Quo(numerator, lo)
}

// Amount1Delta returns liquidity * (sqrtB - sqrtA) / 2^96, truncated.
func Amount1Delta(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	lo, hi := orderPrices(sqrtA, sqrtB)
	out := new(big.Int).Sub(hi, lo)
	out.Mul(out, liquidity)
	return out.Quo(out, Q96)
}

func orderPrices(a, b *big.Int) (*big.Int, *big.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}
