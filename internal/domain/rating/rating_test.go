package rating_test

import (
	"errors"
	"testing"

	"github.com/okian/maidx/internal/domain/rating"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRating(t *testing.T) {
	Convey("Given the single-chart rating function", t, func() {
		Convey("When the achievement is exactly 100.0000 on a 14.0 chart", func() {
			Convey("Then the SSS coefficient 21.6 is applied and floored", func() {
				So(rating.Rating(d("100.0000"), d("14.0")), ShouldEqual, 302)
			})
		})

		Convey("When the achievement is exactly 97.0000 on a 13.0 chart", func() {
			Convey("Then the threshold is inclusive", func() {
				So(rating.Rating(d("97.0000"), d("13.0")), ShouldEqual, 252)
			})
		})

		Convey("When the achievement sits either side of 80%", func() {
			below := rating.Rating(d("79.9999"), d("14.0"))
			at := rating.Rating(d("80.0000"), d("14.0"))

			Convey("Then the coefficient jumps exactly at 80", func() {
				So(rating.CoefficientFor(d("79.9999")).Factor.String(), ShouldEqual, "12.8")
				So(rating.CoefficientFor(d("80")).Factor.String(), ShouldEqual, "13.6")
				So(below, ShouldEqual, 143)
				So(at, ShouldEqual, 152)
			})
		})

		Convey("When the achievement exceeds 100.5", func() {
			Convey("Then it rates the same as 100.5", func() {
				for _, ds := range []string{"1.0", "7.5", "12.9", "14.0", "15.0"} {
					So(rating.Rating(d("150"), d(ds)), ShouldEqual, rating.Rating(d("100.5"), d(ds)))
					So(rating.Rating(d("101.0000"), d(ds)), ShouldEqual, rating.MaxRating(d(ds)))
				}
				So(rating.MaxRating(d("14.0")), ShouldEqual, 315)
			})
		})

		Convey("When the exact product is an integer", func() {
			Convey("Then it is not floored below that integer", func() {
				// 13.6 * 12.5 * 80 / 100 = 136 exactly
				So(rating.Rating(d("80"), d("12.5")), ShouldEqual, 136)
			})
		})

		Convey("When sweeping achievements on a fixed chart", func() {
			ds := d("13.7")
			prev := -1
			bounded := true
			nonDecreasing := true
			for u := int64(0); u <= 1010000; u += 1237 {
				r := rating.Rating(decimal.New(u, -4), ds)
				if r < prev {
					nonDecreasing = false
				}
				if r < 0 || r > rating.MaxRating(ds) {
					bounded = false
				}
				prev = r
			}

			Convey("Then the rating never decreases and stays within [0, max]", func() {
				So(nonDecreasing, ShouldBeTrue)
				So(bounded, ShouldBeTrue)
			})

			Convey("And the coefficient stays flat from 100 to 100.4999", func() {
				// The one place the table does not step up; only the
				// achievement term moves the rating there.
				So(rating.CoefficientFor(d("100.4999")).Factor.Equal(rating.CoefficientFor(d("100")).Factor), ShouldBeTrue)
				So(rating.Rating(d("100.4999"), ds), ShouldBeGreaterThanOrEqualTo, rating.Rating(d("100"), ds))
			})
		})

		Convey("When inputs are malformed", func() {
			Convey("Then the lenient variant does not validate", func() {
				So(rating.Rating(d("-5"), d("14.0")), ShouldEqual, 0)
				So(rating.Rating(d("0"), d("14.0")), ShouldEqual, 0)
			})

			Convey("And the strict variant rejects them", func() {
				_, err := rating.RatingStrict(d("-0.0001"), d("14.0"))
				So(errors.Is(err, rating.ErrInvalidInput), ShouldBeTrue)

				_, err = rating.RatingStrict(d("99.0"), d("0"))
				So(errors.Is(err, rating.ErrInvalidInput), ShouldBeTrue)

				_, err = rating.RatingStrict(d("101.0001"), d("14.0"))
				So(errors.Is(err, rating.ErrInvalidInput), ShouldBeTrue)

				So(rating.Validate(d("101"), d("14.0")), ShouldBeNil)
				So(errors.Is(rating.Validate(d("100"), d("-14.0")), rating.ErrInvalidInput), ShouldBeTrue)

				r, err := rating.RatingStrict(d("100.0"), d("14.0"))
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 302)
			})
		})
	})
}

func TestRankAndTable(t *testing.T) {
	Convey("Given the coefficient table", t, func() {
		tbl := rating.Table()

		Convey("Then it has 23 ascending rows ending at SSS+", func() {
			So(len(tbl), ShouldEqual, 23)
			for i := 1; i < len(tbl); i++ {
				So(tbl[i].Threshold.GreaterThan(tbl[i-1].Threshold), ShouldBeTrue)
			}
			So(tbl[len(tbl)-1].Rank, ShouldEqual, rating.RankSSSP)
		})

		Convey("When the returned copy is modified", func() {
			tbl[0].Factor = d("99")

			Convey("Then the package table is unaffected", func() {
				So(rating.Rating(d("5"), d("10.0")), ShouldEqual, 0)
			})
		})

		Convey("When ranking achievements", func() {
			So(rating.RankOf(d("100.5")), ShouldEqual, rating.RankSSSP)
			So(rating.RankOf(d("100.4999")), ShouldEqual, rating.RankSSS)
			So(rating.RankOf(d("80")), ShouldEqual, rating.RankA)
			So(rating.RankOf(d("79.9999")), ShouldEqual, rating.RankBBB)
			So(rating.RankOf(d("50")), ShouldEqual, rating.RankC)
			So(rating.RankOf(d("49.9999")), ShouldEqual, rating.RankD)
			So(rating.RankSP.Display(), ShouldEqual, "S+")
			So(rating.RankSSSP.Display(), ShouldEqual, "SSS+")
		})
	})
}
