package catalog_test

import (
	"strings"
	"testing"

	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIndex(t *testing.T) {
	Convey("Given an index over the music data", t, func() {
		songs, err := catalog.Parse(strings.NewReader(musicData))
		So(err, ShouldBeNil)
		idx := catalog.NewIndex(catalog.Snapshot("jp", songs))

		Convey("Then charts resolve by title or by song id", func() {
			c, ok := idx.Lookup(model.ChartIdentity{Title: "Mid Song", Type: model.ChartDeluxe, Difficulty: model.Master})
			So(ok, ShouldBeTrue)
			So(c.DS.String(), ShouldEqual, "13.5")

			c, ok = idx.Lookup(model.ChartIdentity{SongID: 834, Difficulty: model.ReMaster})
			So(ok, ShouldBeTrue)
			So(c.Chart.Title, ShouldEqual, "Old Song")

			_, ok = idx.Lookup(model.ChartIdentity{Title: "Nope", Type: model.ChartDeluxe, Difficulty: model.Master})
			So(ok, ShouldBeFalse)
		})

		Convey("When classifying results", func() {
			out := idx.Classify([]model.ChartResult{
				{Chart: model.ChartIdentity{SongID: 11451, Difficulty: model.Master}, Achievement: decimal.RequireFromString("100.5")},
				{Chart: model.ChartIdentity{Title: "Old Song", Type: model.ChartStandard, Difficulty: model.Master}, Achievement: decimal.RequireFromString("99")},
				{Chart: model.ChartIdentity{Title: "Ghost", Type: model.ChartStandard, Difficulty: model.Basic}, DS: decimal.RequireFromString("3.0")},
			})

			Convey("Then DS and era come from the catalog", func() {
				So(out[0].Era, ShouldEqual, model.EraCurrent)
				So(out[0].Result.DS.String(), ShouldEqual, "14")
				So(out[0].Result.Chart.Title, ShouldEqual, "New Song")
				So(out[1].Era, ShouldEqual, model.EraPrior)
				So(out[1].Result.DS.String(), ShouldEqual, "12.7")
				So(out[2].Era, ShouldEqual, model.EraUnknown)
				So(out[2].Result.DS.String(), ShouldEqual, "3")
			})
		})
	})
}
