// Package rating converts a chart's achievement percentage and difficulty
// constant into the single-chart rating, and enumerates the achievement
// breakpoints at which that rating changes.
//
// All arithmetic is done on decimals so that boundary values such as 79.9999
// and 80 compare exactly, and every caller gets the same integer.
package rating

import (
	"github.com/shopspring/decimal"
)

// Rank is the letter grade shown for an achievement.
type Rank string

// Ranks from lowest to highest.
const (
	RankD    Rank = "d"
	RankC    Rank = "c"
	RankB    Rank = "b"
	RankBB   Rank = "bb"
	RankBBB  Rank = "bbb"
	RankA    Rank = "a"
	RankAA   Rank = "aa"
	RankAAA  Rank = "aaa"
	RankS    Rank = "s"
	RankSP   Rank = "sp"
	RankSS   Rank = "ss"
	RankSSP  Rank = "ssp"
	RankSSS  Rank = "sss"
	RankSSSP Rank = "sssp"
)

var rankDisplay = map[Rank]string{
	RankD: "D", RankC: "C", RankB: "B", RankBB: "BB", RankBBB: "BBB",
	RankA: "A", RankAA: "AA", RankAAA: "AAA",
	RankS: "S", RankSP: "S+", RankSS: "SS", RankSSP: "SS+", RankSSS: "SSS", RankSSSP: "SSS+",
}

// Display returns the in-game label, e.g. "SSS+".
func (r Rank) Display() string {
	if s, ok := rankDisplay[r]; ok {
		return s
	}
	return string(r)
}

// Coefficient is one row of the achievement table. The factor applies to
// every achievement in [Threshold, next row's Threshold); the last row
// applies to everything above it.
type Coefficient struct {
	Threshold decimal.Decimal
	Factor    decimal.Decimal
	Rank      Rank
}

func row(threshold, factor string, rank Rank) Coefficient {
	return Coefficient{
		Threshold: decimal.RequireFromString(threshold),
		Factor:    decimal.RequireFromString(factor),
		Rank:      rank,
	}
}

// coefficients is sorted ascending by threshold and never mutated.
//
// The 100.4999 row repeats the 100 row's 21.6 instead of continuing the
// progression. Every published client computes it this way, so it stays.
var coefficients = []Coefficient{
	row("0", "0", RankD),
	row("10", "1.6", RankD),
	row("20", "3.2", RankD),
	row("30", "4.8", RankD),
	row("40", "6.4", RankD),
	row("50", "8.0", RankC),
	row("60", "9.6", RankB),
	row("70", "11.2", RankBB),
	row("75", "12.0", RankBBB),
	row("79.9999", "12.8", RankBBB),
	row("80", "13.6", RankA),
	row("90", "15.2", RankAA),
	row("94", "16.8", RankAAA),
	row("96.9999", "17.6", RankAAA),
	row("97", "20.0", RankS),
	row("98", "20.3", RankSP),
	row("98.9999", "20.6", RankSP),
	row("99", "20.8", RankSS),
	row("99.5", "21.1", RankSSP),
	row("99.9999", "21.4", RankSSP),
	row("100", "21.6", RankSSS),
	row("100.4999", "21.6", RankSSS),
	row("100.5", "22.4", RankSSSP),
}

// Table returns a copy of the coefficient table.
func Table() []Coefficient {
	out := make([]Coefficient, len(coefficients))
	copy(out, coefficients)
	return out
}

// lookup returns the row with the largest threshold <= achievement. Values
// below the first threshold fall into the first row.
func lookup(achievement decimal.Decimal) Coefficient {
	last := len(coefficients) - 1
	for i := 0; i < last; i++ {
		if achievement.LessThan(coefficients[i+1].Threshold) {
			return coefficients[i]
		}
	}
	return coefficients[last]
}

// CoefficientFor returns the table row that applies to achievement.
func CoefficientFor(achievement decimal.Decimal) Coefficient {
	return lookup(achievement)
}

// RankOf returns the rank for achievement.
func RankOf(achievement decimal.Decimal) Rank {
	return lookup(achievement).Rank
}
