package clmath

import (
	"math/big"
	"reflect"
	"testing"
)

func TestSqrtRatioAtTickBounds(t *testing.T) {
	cases := []struct {
		tick int32
		want *big.Int
	}{
		{tick: 0, want: Q96},
		{tick: MinTick, want: MinSqrtRatio},
		{tick: MaxTick, want: MaxSqrtRatio},
	}
	for _, tc := range cases {
		got, err := SqrtRatioAtTick(tc.tick)
		if err != nil {
			t.Fatalf("tick %d: %v", tc.tick, err)
		}
		if got.Cmp(tc.want) != 0 {
			t.Fatalf("tick %d: got %s want %s", tc.tick, got, tc.want)
		}
	}

	if _, err := SqrtRatioAtTick(MaxTick + 1); err == nil {
		t.Fatalf("expected error above max tick")
	}
	if _, err := SqrtRatioAtTick(MinTick - 1); err == nil {
		t.Fatalf("expected error below min tick")
	}
}

func TestSqrtRatioAtTickMonotonic(t *testing.T) {
	prev, err := SqrtRatioAtTick(-1000)
	if err != nil {
		t.Fatalf("sqrt ratio: %v", err)
	}
	for tick := int32(-999); tick <= 1000; tick += 37 {
		cur, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("sqrt ratio %d: %v", tick, err)
		}
		if cur.Cmp(prev) <= 0 {
			t.Fatalf("sqrt ratio not increasing at tick %d", tick)
		}
		prev = cur
	}
}

func TestFeeGrowthInsideQuadrants(t *testing.T) {
	global := big.NewInt(1000)
	outsideLower := big.NewInt(100)
	outsideUpper := big.NewInt(200)

	cases := []struct {
		name         string
		lower, upper int32
		current      int32
		want         int64
	}{
		// current >= lower, current < upper
		{name: "inside", lower: -60, upper: 60, current: 0, want: 700},
		// current < lower, current < upper
		{name: "below", lower: -60, upper: 60, current: -61, want: -100},
		// current >= lower, current >= upper
		{name: "above", lower: -60, upper: 60, current: 60, want: 100},
		// current < lower, current >= upper
		{name: "inverted", lower: 60, upper: -60, current: 0, want: -700},
	}
	for _, tc := range cases {
		got := FeeGrowthInside(global, outsideLower, outsideUpper, tc.lower, tc.upper, tc.current)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("%s: got %s want %d", tc.name, got, tc.want)
		}
	}
}

func TestFeeGrowthInsideAtLowerBoundaryCountsAsInside(t *testing.T) {
	got := FeeGrowthInside(big.NewInt(50), big.NewInt(0), big.NewInt(0), -60, 60, -60)
	if got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("got %s want 50", got)
	}
}

func TestAccruedFeesLinear(t *testing.T) {
	last := big.NewInt(0)
	now := new(big.Int).Add(new(big.Int).Rsh(Q128, 1), big.NewInt(1))

	for _, l := range []int64{1, 7, 12345, 1_000_000_007} {
		single := AccruedFees(big.NewInt(l), now, last)
		double := AccruedFees(big.NewInt(2*l), now, last)
		diff := new(big.Int).Sub(double, new(big.Int).Mul(single, big.NewInt(2)))
		if diff.CmpAbs(big.NewInt(1)) > 0 {
			t.Fatalf("liquidity %d: accrued(2L)=%s 2*accrued(L)=%s", l, double, new(big.Int).Mul(single, big.NewInt(2)))
		}
	}
}

func TestAccruedFeesExact(t *testing.T) {
	now := new(big.Int).Mul(Q128, big.NewInt(3))
	got := AccruedFees(big.NewInt(1000), now, big.NewInt(0))
	if got.Cmp(big.NewInt(3000)) != 0 {
		t.Fatalf("got %s want 3000", got)
	}
	if got := AccruedFees(big.NewInt(0), now, big.NewInt(0)); got.Sign() != 0 {
		t.Fatalf("zero liquidity accrued %s", got)
	}
}

func TestApplyFeeGrowth(t *testing.T) {
	global := big.NewInt(42)
	if got := ApplyFeeGrowth(global, big.NewInt(300), big.NewInt(0)); got.Cmp(global) != 0 {
		t.Fatalf("zero liquidity changed global: %s", got)
	}

	got := ApplyFeeGrowth(big.NewInt(0), big.NewInt(300), big.NewInt(1000))
	want := new(big.Int).Mul(Q128, big.NewInt(300))
	want.Quo(want, big.NewInt(1000))
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", got, want)
	}
	if global.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("input mutated")
	}
}

func TestFlip(t *testing.T) {
	if got := Flip(big.NewInt(900), big.NewInt(100)); got.Cmp(big.NewInt(800)) != 0 {
		t.Fatalf("got %s want 800", got)
	}
	if got := Flip(big.NewInt(900), nil); got.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("got %s want 900", got)
	}
}

func TestComputeAmountsRegions(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000_000)

	below, _ := SqrtRatioAtTick(-120)
	lower, _ := SqrtRatioAtTick(-60)
	upper, _ := SqrtRatioAtTick(60)
	above, _ := SqrtRatioAtTick(120)

	for _, price := range []*big.Int{below, lower} {
		amounts, err := ComputeAmounts(liquidity, -60, 60, price)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if amounts.Amount1.Sign() != 0 || amounts.Amount0.Sign() <= 0 {
			t.Fatalf("at or below lower: %+v", amounts)
		}
	}

	for _, price := range []*big.Int{upper, above} {
		amounts, err := ComputeAmounts(liquidity, -60, 60, price)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if amounts.Amount0.Sign() != 0 || amounts.Amount1.Sign() <= 0 {
			t.Fatalf("at or above upper: %+v", amounts)
		}
	}

	inside, err := ComputeAmounts(liquidity, -60, 60, Q96)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if inside.Amount0.Sign() <= 0 || inside.Amount1.Sign() <= 0 {
		t.Fatalf("inside range: %+v", inside)
	}
}

func TestComputeAmountsNegation(t *testing.T) {
	add, err := ComputeAmounts(big.NewInt(987654321), -600, 1200, Q96)
	if err != nil {
		t.Fatalf("compute add: %v", err)
	}
	remove, err := ComputeAmounts(big.NewInt(-987654321), -600, 1200, Q96)
	if err != nil {
		t.Fatalf("compute remove: %v", err)
	}

	if new(big.Int).Neg(add.Amount0).Cmp(remove.Amount0) != 0 || new(big.Int).Neg(add.Amount1).Cmp(remove.Amount1) != 0 {
		t.Fatalf("amounts not negated: %+v vs %+v", add, remove)
	}
	if add.Amount0Abs.Cmp(remove.Amount0Abs) != 0 || add.Amount1Abs.Cmp(remove.Amount1Abs) != 0 {
		t.Fatalf("abs amounts differ: %+v vs %+v", add, remove)
	}
}

func TestComputeAmountsInvalidRange(t *testing.T) {
	if _, err := ComputeAmounts(big.NewInt(1), 60, 60, Q96); err == nil {
		t.Fatalf("expected error for empty range")
	}
	if _, err := ComputeAmounts(big.NewInt(1), -60, MaxTick+60, Q96); err == nil {
		t.Fatalf("expected error for out of range tick")
	}
}

func TestCrossedTicksEqual(t *testing.T) {
	all := func(int32) bool { return true }
	for _, tick := range []int32{-887272, -61, 0, 59, 60, 887272} {
		if got := CrossedTicks(tick, tick, 60, all); len(got) != 0 {
			t.Fatalf("tick %d: expected no crossings, got %v", tick, got)
		}
	}
}

func TestCrossedTicksFiltersInitialized(t *testing.T) {
	initialized := map[int32]bool{-60: true, 0: true, 60: true, 120: true, 180: true}
	has := func(tick int32) bool { return initialized[tick] }

	if got := CrossedTicks(0, 120, 60, has); !reflect.DeepEqual(got, []int32{60, 120}) {
		t.Fatalf("ascending: %v", got)
	}
	if got := CrossedTicks(120, -60, 60, has); !reflect.DeepEqual(got, []int32{60, 0, -60}) {
		t.Fatalf("descending: %v", got)
	}
	if got := CrossedTicks(0, 59, 60, has); len(got) != 0 {
		t.Fatalf("no aligned tick in range: %v", got)
	}
}

func TestCrossedTicksOrderingAndBounds(t *testing.T) {
	all := func(int32) bool { return true }
	moves := [][2]int32{{0, 120}, {-61, 5}, {-1, -130}, {125, -125}, {7, 8}, {-300, -299}, {600, 0}}

	for _, move := range moves {
		oldTick, newTick := move[0], move[1]
		got := CrossedTicks(oldTick, newTick, 60, all)
		for i, tick := range got {
			if tick%60 != 0 {
				t.Fatalf("%v: tick %d not aligned", move, tick)
			}
			if newTick > oldTick {
				if tick <= oldTick || tick > newTick {
					t.Fatalf("%v: tick %d outside (old, new]", move, tick)
				}
				if i > 0 && tick <= got[i-1] {
					t.Fatalf("%v: not strictly increasing: %v", move, got)
				}
			} else {
				if tick < newTick || tick >= oldTick {
					t.Fatalf("%v: tick %d outside [new, old)", move, tick)
				}
				if i > 0 && tick >= got[i-1] {
					t.Fatalf("%v: not strictly decreasing: %v", move, got)
				}
			}
		}
	}

	if got := CrossedTicks(-1, -130, 60, all); !reflect.DeepEqual(got, []int32{-60, -120}) {
		t.Fatalf("negative descending: %v", got)
	}
	if got := CrossedTicks(-61, 5, 60, all); !reflect.DeepEqual(got, []int32{-60, 0}) {
		t.Fatalf("negative ascending: %v", got)
	}
}

func TestCandidatesRangeBounds(t *testing.T) {
	r := Candidates(120, -60, 60)
	if r.Lo() != -60 || r.Hi() != 60 || r.Ascending {
		t.Fatalf("unexpected range: %+v", r)
	}
	if !Candidates(5, 5, 60).Empty() {
		t.Fatalf("equal ticks should be empty")
	}
	if !Candidates(1, 59, 60).Empty() {
		t.Fatalf("no aligned candidates should be empty")
	}
}
