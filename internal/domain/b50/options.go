package b50

import (
	"fmt"
	"strings"
)

// Default bucket sizes.
const (
	DefaultPriorLimit   = 35
	DefaultCurrentLimit = 15
)

// UnknownEraPolicy decides what happens to results whose era is unknown.
type UnknownEraPolicy int

// Unknown era policies.
const (
	// PolicyFail rejects the whole aggregation with ErrMissingEra.
	PolicyFail UnknownEraPolicy = iota
	// PolicyPrior treats the chart as prior era.
	PolicyPrior
	// PolicyExclude drops the result.
	PolicyExclude
)

// String implements fmt.Stringer.
func (p UnknownEraPolicy) String() string {
	switch p {
	case PolicyPrior:
		return "prior"
	case PolicyExclude:
		return "exclude"
	default:
		return "fail"
	}
}

// ParseUnknownEraPolicy parses "fail", "prior" or "exclude".
func ParseUnknownEraPolicy(s string) (UnknownEraPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return PolicyFail, nil
	case "prior":
		return PolicyPrior, nil
	case "exclude":
		return PolicyExclude, nil
	}
	return PolicyFail, fmt.Errorf("unknown era policy %q", s)
}

// TieBreak orders results with equal ratings.
type TieBreak int

// Tie-break modes.
const (
	// TieStable keeps input order among equal ratings.
	TieStable TieBreak = iota
	// TieChartIdentity orders equal ratings by chart identity, making the
	// output independent of input order.
	TieChartIdentity
)

// String implements fmt.Stringer.
func (t TieBreak) String() string {
	if t == TieChartIdentity {
		return "chart"
	}
	return "stable"
}

// ParseTieBreak parses "stable" or "chart".
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stable":
		return TieStable, nil
	case "chart", "chart_identity", "identity":
		return TieChartIdentity, nil
	}
	return TieStable, fmt.Errorf("unknown tie break %q", s)
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithLimits sets the prior and current bucket sizes. Non-positive values
// keep the defaults.
func WithLimits(prior, current int) Option {
	return func(a *Aggregator) {
		if prior > 0 {
			a.priorLimit = prior
		}
		if current > 0 {
			a.currentLimit = current
		}
	}
}

// WithUnknownEraPolicy sets how results with EraUnknown are handled.
func WithUnknownEraPolicy(p UnknownEraPolicy) Option {
	return func(a *Aggregator) {
		a.unknown = p
	}
}

// WithTieBreak sets how equal ratings are ordered.
func WithTieBreak(t TieBreak) Option {
	return func(a *Aggregator) {
		a.tieBreak = t
	}
}
