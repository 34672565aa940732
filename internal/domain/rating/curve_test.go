package rating_test

import (
	"testing"

	"github.com/okian/maidx/internal/domain/rating"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDetailedBreakpoints(t *testing.T) {
	Convey("Given a 14.0 chart", t, func() {
		ds := d("14.0")
		points := rating.DetailedBreakpoints(ds, nil)
		unit := decimal.New(1, -4)

		Convey("Then the curve spans SSS+ down to C", func() {
			So(len(points), ShouldBeGreaterThan, 20)
			So(points[0].Achievement.Equal(d("100.5")), ShouldBeTrue)
			So(points[0].Rating, ShouldEqual, 315)
			So(points[0].Rank, ShouldEqual, rating.RankSSSP)

			last := points[len(points)-1]
			So(last.Achievement.Equal(d("50")), ShouldBeTrue)
			So(last.Rating, ShouldEqual, 56)
			So(last.Rank, ShouldEqual, rating.RankC)
		})

		Convey("And each point is the first achievement reaching its rating", func() {
			for i, p := range points {
				So(rating.Rating(p.Achievement, ds), ShouldEqual, p.Rating)
				So(rating.Rating(p.Achievement.Sub(unit), ds), ShouldBeLessThan, p.Rating)
				if i > 0 {
					So(p.Achievement.LessThan(points[i-1].Achievement), ShouldBeTrue)
					So(p.Rating, ShouldBeLessThan, points[i-1].Rating)
				}
			}
		})

		Convey("And the rank thresholds appear", func() {
			found := map[string]int{}
			for _, p := range points {
				found[p.Achievement.StringFixed(4)] = p.Rating
			}
			So(found["97.0000"], ShouldEqual, 271)
			So(found["80.0000"], ShouldEqual, 152)
			So(found["100.0000"], ShouldEqual, 302)
		})

		Convey("When a current achievement on a breakpoint is given", func() {
			cur := d("99.0")
			filtered := rating.DetailedBreakpoints(ds, &cur)

			Convey("Then only higher points and the point itself remain", func() {
				So(len(filtered), ShouldBeGreaterThan, 1)
				So(filtered[len(filtered)-1].Achievement.Equal(cur), ShouldBeTrue)
				for _, p := range filtered[:len(filtered)-1] {
					So(p.Achievement.GreaterThan(cur), ShouldBeTrue)
				}
			})
		})

		Convey("When a current achievement between breakpoints is given", func() {
			cur := d("99.2")
			filtered := rating.DetailedBreakpoints(ds, &cur)

			Convey("Then exactly one point at or below it is kept", func() {
				atOrBelow := 0
				for _, p := range filtered {
					if !p.Achievement.GreaterThan(cur) {
						atOrBelow++
					}
				}
				So(atOrBelow, ShouldEqual, 1)
				So(filtered[len(filtered)-1].Achievement.LessThanOrEqual(cur), ShouldBeTrue)
			})
		})

		Convey("When the current achievement is already SSS+", func() {
			cur := d("100.7")
			filtered := rating.DetailedBreakpoints(ds, &cur)

			Convey("Then only the top point is returned", func() {
				So(len(filtered), ShouldEqual, 1)
				So(filtered[0].Achievement.Equal(d("100.5")), ShouldBeTrue)
			})
		})
	})
}
