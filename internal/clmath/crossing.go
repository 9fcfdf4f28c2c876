package clmath

// CrossingRange describes the spacing-aligned ticks a price move passes over.
// Ascending moves cover (old, new], descending moves cover [new, old).
type CrossingRange struct {
	Start     int32
	End       int32
	Step      int32
	Ascending bool
}

// Lo and Hi bound the range inclusively, independent of direction.
func (r CrossingRange) Lo() int32 {
	if r.Ascending {
		return r.Start
	}
	return r.End
}

func (r CrossingRange) Hi() int32 {
	if r.Ascending {
		return r.End
	}
	return r.Start
}

// Empty reports whether the range holds no aligned candidates.
func (r CrossingRange) Empty() bool {
	if r.Step == 0 {
		return true
	}
	if r.Ascending {
		return r.Start > r.End
	}
	return r.Start < r.End
}

// Candidates returns the aligned candidate range for a move from oldTick to
// newTick. The range is empty when the ticks are equal or spacing is not positive.
func Candidates(oldTick, newTick, tickSpacing int32) CrossingRange {
	if oldTick == newTick || tickSpacing <= 0 {
		return CrossingRange{}
	}
	spacing := int64(tickSpacing)
	if newTick > oldTick {
		start := ceilMultiple(int64(oldTick)+1, spacing)
		return CrossingRange{Start: int32(start), End: newTick, Step: tickSpacing, Ascending: true}
	}
	start := floorMultiple(int64(oldTick)-1, spacing)
	return CrossingRange{Start: int32(start), End: newTick, Step: tickSpacing}
}

// CrossedTicks returns the initialized ticks crossed when price moves from
// oldTick to newTick, in the direction of movement.
func CrossedTicks(oldTick, newTick, tickSpacing int32, initialized func(int32) bool) []int32 {
	r := Candidates(oldTick, newTick, tickSpacing)
	if r.Empty() {
		return nil
	}

	var crossed []int32
	if r.Ascending {
		for t := int64(r.Start); t <= int64(r.End); t += int64(r.Step) {
			if initialized(int32(t)) {
				crossed = append(crossed, int32(t))
			}
		}
		return crossed
	}
	for t := int64(r.Start); t >= int64(r.End); t -= int64(r.Step) {
		if initialized(int32(t)) {
			crossed = append(crossed, int32(t))
		}
	}
	return crossed
}

func floorMultiple(v, m int64) int64 {
	q := v / m
	if v%m != 0 && v < 0 {
		q--
	}
	return q * m
}

func ceilMultiple(v, m int64) int64 {
	q := v / m
	if v%m != 0 && v > 0 {
		q++
	}
	return q * m
}
