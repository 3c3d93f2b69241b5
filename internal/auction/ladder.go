package auction

import "github.com/sreeharimv/auction-platform/internal/config"

// Ladder generates the tier-dependent sequence of legal bid values above a
// given price. Three tiers apply relative to the configured base price:
// [base, 2×base) steps by Increments[0], [2×base, 4×base) by Increments[1],
// and [4×base, ∞) by Increments[2]. The tier is re-evaluated against the
// running price at every step, so one walk can cross tiers mid-sequence.
type Ladder struct {
	base  int64
	steps [3]int64
	// smallStepsOnly collapses every tier to steps[0]. Applied when any
	// team is one purchase away from a full squad, to keep bids granular
	// while reserve checks still matter.
	smallStepsOnly bool
}

// NewLadder builds a ladder from a rules snapshot.
func NewLadder(r config.Rules, smallStepsOnly bool) Ladder {
	return Ladder{base: r.BasePrice, steps: r.Increments, smallStepsOnly: smallStepsOnly}
}

func (l Ladder) step(price int64) int64 {
	if l.smallStepsOnly {
		return l.steps[0]
	}
	switch {
	case price < 2*l.base:
		return l.steps[0]
	case price < 4*l.base:
		return l.steps[1]
	default:
		return l.steps[2]
	}
}

// Ascend returns the first n ladder values starting exactly at from.
func (l Ladder) Ascend(from int64, n int) []int64 {
	out := make([]int64, 0, n)
	price := from
	for i := 0; i < n; i++ {
		out = append(out, price)
		price += l.step(price)
	}
	return out
}

// NextAbove returns the first ladder value strictly greater than price.
func (l Ladder) NextAbove(price int64) int64 {
	return price + l.step(price)
}
