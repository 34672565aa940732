package config_test

import (
	"runtime"
	"testing"

	"github.com/okian/maidx/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.DefaultRegion, convey.ShouldEqual, "jp")
			convey.So(cfg.UnknownEraPolicy, convey.ShouldEqual, "fail")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then origins split on commas", func() {
			cfg.CORSOrigins = " https://a.example , ,https://b.example"
			convey.So(cfg.Origins(), convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
		})

		convey.Convey("Then aggregator options are produced", func() {
			convey.So(len(cfg.AggregatorOptions()), convey.ShouldEqual, 2)
		})
	})
}
