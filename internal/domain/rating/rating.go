package rating

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	achievementCap = decimal.RequireFromString("100.5")
	maxFactor      = decimal.RequireFromString("22.4")

	// MaxAchievement is the highest achievement a play can reach.
	MaxAchievement = decimal.NewFromInt(101)
)

// Rating computes floor(factor * ds * min(100.5, achievement) / 100).
//
// Inputs are not validated: a negative achievement lands in the first row
// and rates 0, a non-positive ds yields a non-positive rating. Use
// RatingStrict at system boundaries.
func Rating(achievement, ds decimal.Decimal) int {
	c := lookup(achievement)
	effective := decimal.Min(achievement, achievementCap)
	return int(c.Factor.Mul(ds).Mul(effective).Shift(-2).Floor().IntPart())
}

// Validate reports ErrInvalidInput for an achievement outside
// [0, MaxAchievement] or a non-positive difficulty constant.
func Validate(achievement, ds decimal.Decimal) error {
	if achievement.IsNegative() || achievement.GreaterThan(MaxAchievement) {
		return fmt.Errorf("achievement %s out of range [0, %s]: %w", achievement, MaxAchievement, ErrInvalidInput)
	}
	if !ds.IsPositive() {
		return fmt.Errorf("difficulty constant %s must be positive: %w", ds, ErrInvalidInput)
	}
	return nil
}

// RatingStrict is Rating with input validation (see Validate).
func RatingStrict(achievement, ds decimal.Decimal) (int, error) {
	if err := Validate(achievement, ds); err != nil {
		return 0, err
	}
	return Rating(achievement, ds), nil
}

// MaxRating is the rating of an SSS+ (100.5%) play on a chart of ds.
func MaxRating(ds decimal.Decimal) int {
	return int(maxFactor.Mul(ds).Mul(achievementCap).Shift(-2).Floor().IntPart())
}
