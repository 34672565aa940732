package model_test

import (
	"testing"

	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestChartIdentity(t *testing.T) {
	Convey("Given chart identities", t, func() {
		a := model.ChartIdentity{Title: "Oshama Scramble!", Type: model.ChartStandard, Difficulty: model.Expert}
		b := model.ChartIdentity{Title: "Oshama Scramble!", Type: model.ChartStandard, Difficulty: model.Master}

		Convey("Then String uses the report form", func() {
			So(a.String(), ShouldEqual, "Oshama Scramble! [std] expert")
		})

		Convey("And keys differ per tier", func() {
			So(a.Key(), ShouldNotEqual, b.Key())
		})

		Convey("And ordering follows difficulty index within a title", func() {
			So(a.Less(b), ShouldBeTrue)
			So(b.Less(a), ShouldBeFalse)
		})
	})
}

func TestParsers(t *testing.T) {
	Convey("Given source spellings", t, func() {
		ct, err := model.ParseChartType("SD")
		So(err, ShouldBeNil)
		So(ct, ShouldEqual, model.ChartStandard)

		df, err := model.ParseDifficulty("Re:Master")
		So(err, ShouldBeNil)
		So(df, ShouldEqual, model.ReMaster)

		df, err = model.DifficultyFromIndex(3)
		So(err, ShouldBeNil)
		So(df, ShouldEqual, model.Master)
		_, err = model.DifficultyFromIndex(5)
		So(err, ShouldNotBeNil)

		s, err := model.ParseSyncStatus("fsdp")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, model.SyncFullSyncDXPlus)

		c, err := model.ComboFromIndex(4)
		So(err, ShouldBeNil)
		So(c, ShouldEqual, model.ComboAllPerfectPlus)
		_, err = model.ParseComboStatus("perfect")
		So(err, ShouldNotBeNil)

		So(model.ParseEra("dx"), ShouldEqual, model.EraCurrent)
		So(model.ParseEra("sd"), ShouldEqual, model.EraPrior)
		So(model.ParseEra("?"), ShouldEqual, model.EraUnknown)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given over-precise inputs", t, func() {
		So(model.NormalizeAchievement(decimal.RequireFromString("79.9999")).String(), ShouldEqual, "79.9999")
		So(model.NormalizeAchievement(decimal.RequireFromString("100.12345")).String(), ShouldEqual, "100.1235")
		So(model.NormalizeDS(decimal.RequireFromString("13.74")).String(), ShouldEqual, "13.7")
	})
}
