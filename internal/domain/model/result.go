package model

import (
	"github.com/shopspring/decimal"
)

// ChartResult is one played chart's result, normalized from whichever score
// source reported it.
type ChartResult struct {
	Chart ChartIdentity `json:"chart"`

	// Achievement is a percentage with four fractional digits (numeric(7,4)).
	Achievement decimal.Decimal `json:"achievements"`

	// DS is the chart's difficulty constant with one fractional digit (numeric(3,1)).
	DS decimal.Decimal `json:"ds"`

	DXScore   int         `json:"dx_score"`
	Combo     ComboStatus `json:"combo"`
	Sync      SyncStatus  `json:"sync"`
	PlayCount *int        `json:"play_count,omitempty"`
}

// RatedResult is a ChartResult plus its derived single-chart rating.
type RatedResult struct {
	ChartResult
	Rating int    `json:"rating"`
	Rank   string `json:"rank"`
}

// Era classifies a chart relative to a region's latest version.
type Era int

// Era values. EraUnknown means the catalog could not classify the chart.
const (
	EraUnknown Era = iota
	EraPrior
	EraCurrent
)

// String implements fmt.Stringer.
func (e Era) String() string {
	switch e {
	case EraPrior:
		return "prior"
	case EraCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// ParseEra accepts "prior"/"past"/"sd" and "current"/"new"/"dx".
func ParseEra(s string) Era {
	switch s {
	case "prior", "past", "old", "sd":
		return EraPrior
	case "current", "new", "dx":
		return EraCurrent
	default:
		return EraUnknown
	}
}

// ClassifiedResult pairs a result with the era tag supplied by the catalog.
type ClassifiedResult struct {
	Result ChartResult
	Era    Era
}

// B50Summary is a player's Best 50 for one region.
//
// Past holds the prior-era best (up to 35) and New the current-era best (up
// to 15); some clients call these "sd" and "dx".
type B50Summary struct {
	Past  []RatedResult `json:"past"`
	New   []RatedResult `json:"new"`
	Total int           `json:"total"`
}

// PastTotal sums the ratings in Past.
func (s B50Summary) PastTotal() int { return sumRatings(s.Past) }

// NewTotal sums the ratings in New.
func (s B50Summary) NewTotal() int { return sumRatings(s.New) }

func sumRatings(rs []RatedResult) int {
	total := 0
	for _, r := range rs {
		total += r.Rating
	}
	return total
}

// NormalizeAchievement rounds an achievement to the four fractional digits
// that are persisted.
func NormalizeAchievement(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// NormalizeDS rounds a difficulty constant to one fractional digit.
func NormalizeDS(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}
