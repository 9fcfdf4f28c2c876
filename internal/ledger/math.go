package ledger

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	feeDenominator = 1_000_000
	priceScale     = 30
)

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// add returns a + b as a new value; nil counts as zero.
func add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(orZero(a), orZero(b))
}

func sub(a, b *big.Int) *big.Int {
	return new(big.Int).Sub(orZero(a), orZero(b))
}

func neg(a *big.Int) *big.Int {
	return new(big.Int).Neg(orZero(a))
}

func abs(a *big.Int) *big.Int {
	return new(big.Int).Abs(orZero(a))
}

func copyInt(a *big.Int) *big.Int {
	return new(big.Int).Set(orZero(a))
}

func orZero(a *big.Int) *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return a
}

// feeFromAmount returns |amount| * feeRate / 1e6.
func feeFromAmount(amount *big.Int, feeRate uint32) *big.Int {
	fee := abs(amount)
	fee.Mul(fee, big.NewInt(int64(feeRate)))
	return fee.Quo(fee, big.NewInt(feeDenominator))
}

// poolPrices returns token0 priced in token1 and token1 priced in token0,
// adjusted for token decimals.
func poolPrices(sqrtPrice *big.Int, decimals0, decimals1 uint8) (decimal.Decimal, decimal.Decimal) {
	if sqrtPrice == nil || sqrtPrice.Sign() <= 0 {
		return decimal.Zero, decimal.Zero
	}
	num := new(big.Int).Mul(sqrtPrice, sqrtPrice)
	num.Mul(num, pow10(decimals0))
	den := new(big.Int).Mul(q192, pow10(decimals1))

	price0 := decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(den, 0), priceScale)
	if price0.IsZero() {
		return price0, decimal.Zero
	}
	return price0, decimal.NewFromInt(1).DivRound(price0, priceScale)
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
