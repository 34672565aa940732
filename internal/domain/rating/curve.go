package rating

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Achievements are scanned in integer units of 0.0001%.
const (
	unitExp    = -4
	blockUnits = 2500 // 0.25%
)

// Breakpoint is the lowest achievement that reaches Rating on a chart.
type Breakpoint struct {
	Achievement decimal.Decimal `json:"achievements"`
	Rating      int             `json:"rating"`
	Rank        Rank            `json:"rank"`
}

func toUnits(d decimal.Decimal) int64 {
	return d.Shift(-unitExp).IntPart()
}

func fromUnits(u int64) decimal.Decimal {
	return decimal.New(u, unitExp)
}

// scanBounds returns the first C-rank threshold and the last threshold, in units.
func scanBounds() (lo, hi int64) {
	for _, c := range coefficients {
		if c.Rank == RankC {
			lo = toUnits(c.Threshold)
			break
		}
	}
	hi = toUnits(coefficients[len(coefficients)-1].Threshold)
	return lo, hi
}

// DetailedBreakpoints lists, highest achievement first, every achievement
// between the C and SSS+ thresholds at which the rating of a chart with
// difficulty constant ds increases.
//
// When current is non-nil the list is cut down to the breakpoints strictly
// above it plus the nearest one at or below it.
func DetailedBreakpoints(ds decimal.Decimal, current *decimal.Decimal) []Breakpoint {
	ra := func(u int64) int { return Rating(fromUnits(u), ds) }
	point := func(u int64, r int) Breakpoint {
		ach := fromUnits(u)
		return Breakpoint{Achievement: ach, Rating: r, Rank: RankOf(ach)}
	}

	lo, hi := scanBounds()
	var out []Breakpoint
	for start := lo; start <= hi; start += blockUnits {
		end := start + blockUnits - 1
		r := ra(start)
		if r > ra(start-1) {
			out = append(out, point(start, r))
		}
		// Rating is non-decreasing in achievement, so each step up inside
		// the block can be found by bisection.
		for ra(end) > r {
			l, h, ans := start, end, end
			for l <= h {
				mid := (l + h) / 2
				if ra(mid) > r {
					ans = mid
					h = mid - 1
				} else {
					l = mid + 1
				}
			}
			r = ra(ans)
			out = append(out, point(ans, r))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Achievement.GreaterThan(out[j].Achievement)
	})

	if current == nil {
		return out
	}
	filtered := make([]Breakpoint, 0, len(out))
	lowerTaken := false
	for _, b := range out {
		if b.Achievement.GreaterThan(*current) {
			filtered = append(filtered, b)
		} else if !lowerTaken {
			filtered = append(filtered, b)
			lowerTaken = true
		}
	}
	return filtered
}
