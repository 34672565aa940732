// Package b50 selects a player's best prior-era and current-era results and
// sums them into the B50 rating.
//
// Aggregation is a pure function of its input. It assumes at most one result
// per chart; feeding duplicates counts the chart twice. Use Dedupe upstream
// when the source cannot guarantee uniqueness.
package b50

import (
	"fmt"
	"sort"

	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/internal/domain/rating"
)

// Aggregator computes B50 summaries. The zero value is not usable; use New.
type Aggregator struct {
	priorLimit   int
	currentLimit int
	unknown      UnknownEraPolicy
	tieBreak     TieBreak
}

// New creates an Aggregator with 35/15 limits, fail-closed unknown era
// handling and stable tie-breaking unless overridden.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		priorLimit:   DefaultPriorLimit,
		currentLimit: DefaultCurrentLimit,
		unknown:      PolicyFail,
		tieBreak:     TieStable,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Limits returns the configured prior and current bucket sizes.
func (a *Aggregator) Limits() (prior, current int) {
	return a.priorLimit, a.currentLimit
}

// Aggregate partitions results by era, rates them, keeps the best of each
// bucket and totals the kept ratings.
func (a *Aggregator) Aggregate(results []model.ClassifiedResult) (model.B50Summary, error) {
	var prior, current []model.RatedResult
	for _, cr := range results {
		era := cr.Era
		if era == model.EraUnknown {
			switch a.unknown {
			case PolicyPrior:
				era = model.EraPrior
			case PolicyExclude:
				continue
			default:
				return model.B50Summary{}, fmt.Errorf("chart %s: %w", cr.Result.Chart, ErrMissingEra)
			}
		}
		rated := Rate(cr.Result)
		if era == model.EraCurrent {
			current = append(current, rated)
		} else {
			prior = append(prior, rated)
		}
	}

	a.sort(prior)
	a.sort(current)
	prior = truncate(prior, a.priorLimit)
	current = truncate(current, a.currentLimit)

	s := model.B50Summary{Past: prior, New: current}
	s.Total = s.PastTotal() + s.NewTotal()
	return s, nil
}

// Aggregate runs a default Aggregator over results.
func Aggregate(results []model.ClassifiedResult) (model.B50Summary, error) {
	return New().Aggregate(results)
}

// Rate attaches the single-chart rating and rank to a result.
func Rate(r model.ChartResult) model.RatedResult {
	return model.RatedResult{
		ChartResult: r,
		Rating:      rating.Rating(r.Achievement, r.DS),
		Rank:        string(rating.RankOf(r.Achievement)),
	}
}

func (a *Aggregator) sort(rs []model.RatedResult) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Rating != rs[j].Rating {
			return rs[i].Rating > rs[j].Rating
		}
		if a.tieBreak == TieChartIdentity {
			return rs[i].Chart.Less(rs[j].Chart)
		}
		return false
	})
}

func truncate(rs []model.RatedResult, n int) []model.RatedResult {
	if rs == nil {
		return []model.RatedResult{}
	}
	if len(rs) > n {
		return rs[:n]
	}
	return rs
}

// Dedupe keeps the last supplied result per chart, in the position of that
// chart's first occurrence.
func Dedupe(results []model.ClassifiedResult) []model.ClassifiedResult {
	idx := make(map[string]int, len(results))
	out := make([]model.ClassifiedResult, 0, len(results))
	for _, r := range results {
		k := r.Result.Chart.Key()
		if i, ok := idx[k]; ok {
			out[i] = r
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out
}
