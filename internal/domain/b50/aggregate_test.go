package b50_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/maidx/internal/domain/b50"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func result(title string, ach, ds string, era model.Era) model.ClassifiedResult {
	return model.ClassifiedResult{
		Result: model.ChartResult{
			Chart:       model.ChartIdentity{Title: title, Type: model.ChartDeluxe, Difficulty: model.Master},
			Achievement: decimal.RequireFromString(ach),
			DS:          decimal.RequireFromString(ds),
		},
		Era: era,
	}
}

// spread returns n results whose ratings are pairwise distinct.
func spread(prefix string, n int, era model.Era) []model.ClassifiedResult {
	out := make([]model.ClassifiedResult, 0, n)
	for i := 0; i < n; i++ {
		ds := decimal.New(50+int64(i), -1).StringFixed(1)
		out = append(out, result(fmt.Sprintf("%s-%02d", prefix, i), "100", ds, era))
	}
	return out
}

func shuffled(in []model.ClassifiedResult, seed int64) []model.ClassifiedResult {
	out := append([]model.ClassifiedResult(nil), in...)
	r := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic shuffle
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given 50 prior and 20 current results with distinct ratings", t, func() {
		input := append(spread("old", 50, model.EraPrior), spread("new", 20, model.EraCurrent)...)

		Convey("When aggregating with defaults", func() {
			s, err := b50.Aggregate(shuffled(input, 1))
			So(err, ShouldBeNil)

			Convey("Then the buckets are truncated to 35 and 15", func() {
				So(len(s.Past), ShouldEqual, 35)
				So(len(s.New), ShouldEqual, 15)
			})

			Convey("And each bucket is strictly descending", func() {
				for i := 1; i < len(s.Past); i++ {
					So(s.Past[i].Rating, ShouldBeLessThan, s.Past[i-1].Rating)
				}
				for i := 1; i < len(s.New); i++ {
					So(s.New[i].Rating, ShouldBeLessThan, s.New[i-1].Rating)
				}
			})

			Convey("And the total is the sum of the kept ratings", func() {
				sum := 0
				for _, r := range append(s.Past, s.New...) {
					sum += r.Rating
				}
				So(s.Total, ShouldEqual, sum)
				So(s.Total, ShouldEqual, s.PastTotal()+s.NewTotal())
			})

			Convey("And no result crosses buckets", func() {
				for _, r := range s.Past {
					So(r.Chart.Title, ShouldStartWith, "old-")
				}
				for _, r := range s.New {
					So(r.Chart.Title, ShouldStartWith, "new-")
				}
			})

			Convey("And the best prior result heads the list", func() {
				So(s.Past[0].Chart.Title, ShouldEqual, "old-49")
				So(s.Past[0].Rank, ShouldEqual, "sss")
			})
		})

		Convey("When aggregating the same set in different orders", func() {
			a, errA := b50.Aggregate(shuffled(input, 7))
			b, errB := b50.Aggregate(shuffled(input, 99))

			Convey("Then the summaries are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})

		Convey("When custom limits are configured", func() {
			s, err := b50.New(b50.WithLimits(10, 5)).Aggregate(input)
			So(err, ShouldBeNil)
			So(len(s.Past), ShouldEqual, 10)
			So(len(s.New), ShouldEqual, 5)
		})
	})

	Convey("Given fewer results than the limits", t, func() {
		s, err := b50.Aggregate([]model.ClassifiedResult{result("a", "99", "13.0", model.EraPrior)})

		Convey("Then the empty bucket is an empty list, not nil", func() {
			So(err, ShouldBeNil)
			So(len(s.Past), ShouldEqual, 1)
			So(s.New, ShouldNotBeNil)
			So(len(s.New), ShouldEqual, 0)
		})
	})
}

func TestAggregateTies(t *testing.T) {
	Convey("Given results with equal ratings", t, func() {
		input := []model.ClassifiedResult{
			result("c", "100", "14.0", model.EraPrior),
			result("a", "100", "14.0", model.EraPrior),
			result("b", "100", "14.0", model.EraPrior),
		}

		Convey("When using the stable tie-break", func() {
			s, err := b50.Aggregate(input)

			Convey("Then input order is preserved", func() {
				So(err, ShouldBeNil)
				So(s.Past[0].Chart.Title, ShouldEqual, "c")
				So(s.Past[1].Chart.Title, ShouldEqual, "a")
				So(s.Past[2].Chart.Title, ShouldEqual, "b")
			})
		})

		Convey("When ordering ties by chart identity", func() {
			agg := b50.New(b50.WithTieBreak(b50.TieChartIdentity))
			s1, _ := agg.Aggregate(input)
			s2, _ := agg.Aggregate(shuffled(input, 3))

			Convey("Then the order is independent of input order", func() {
				So(s1.Past[0].Chart.Title, ShouldEqual, "a")
				So(s1.Past[2].Chart.Title, ShouldEqual, "c")
				So(s1, ShouldResemble, s2)
			})
		})
	})
}

func TestAggregateUnknownEra(t *testing.T) {
	Convey("Given a result with no era", t, func() {
		input := []model.ClassifiedResult{
			result("known", "99", "13.0", model.EraCurrent),
			result("lost", "100", "14.0", model.EraUnknown),
		}

		Convey("When the default policy is used", func() {
			_, err := b50.Aggregate(input)

			Convey("Then aggregation fails closed naming the chart", func() {
				So(errors.Is(err, b50.ErrMissingEra), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "lost [dx] master")
			})
		})

		Convey("When unknown charts are treated as prior", func() {
			s, err := b50.New(b50.WithUnknownEraPolicy(b50.PolicyPrior)).Aggregate(input)
			So(err, ShouldBeNil)
			So(len(s.Past), ShouldEqual, 1)
			So(s.Past[0].Chart.Title, ShouldEqual, "lost")
		})

		Convey("When unknown charts are excluded", func() {
			s, err := b50.New(b50.WithUnknownEraPolicy(b50.PolicyExclude)).Aggregate(input)
			So(err, ShouldBeNil)
			So(len(s.Past), ShouldEqual, 0)
			So(len(s.New), ShouldEqual, 1)
		})
	})

	Convey("Given policy names from configuration", t, func() {
		p, err := b50.ParseUnknownEraPolicy("exclude")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, b50.PolicyExclude)
		_, err = b50.ParseUnknownEraPolicy("guess")
		So(err, ShouldNotBeNil)

		tb, err := b50.ParseTieBreak("chart")
		So(err, ShouldBeNil)
		So(tb, ShouldEqual, b50.TieChartIdentity)
	})
}

func TestDuplicates(t *testing.T) {
	Convey("Given the same chart reported twice", t, func() {
		input := []model.ClassifiedResult{
			result("dup", "98", "14.0", model.EraPrior),
			result("other", "97", "12.0", model.EraPrior),
			result("dup", "100", "14.0", model.EraPrior),
		}

		Convey("When aggregating without deduplication", func() {
			s, err := b50.Aggregate(input)

			Convey("Then the chart is counted twice", func() {
				So(err, ShouldBeNil)
				So(len(s.Past), ShouldEqual, 3)
			})
		})

		Convey("When Dedupe runs first", func() {
			deduped := b50.Dedupe(input)
			s, err := b50.Aggregate(deduped)

			Convey("Then only the most recent result is kept", func() {
				So(err, ShouldBeNil)
				So(len(deduped), ShouldEqual, 2)
				So(deduped[0].Result.Achievement.String(), ShouldEqual, "100")
				So(len(s.Past), ShouldEqual, 2)
				So(s.Past[0].Rating, ShouldEqual, 302)
			})
		})
	})
}
