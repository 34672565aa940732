package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.ratingsComputed.Add(3)

			Convey("Then collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_ratings_computed_total"], ShouldBeTrue)
				So(testutil.ToFloat64(m.ratingsComputed), ShouldEqual, 3)
			})
		})

		Convey("When registering the same manager twice on one registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the duplicate registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording domain metrics", func() {
			before := testutil.ToFloat64(globalManager.uploadScores.WithLabelValues("failed"))
			RecordUploadScores(4, 2)
			RecordUploadDuplicate()
			RecordRatingsComputed(50)
			RecordB50Computed("jp", 3.5)
			UpdateLeaderboardPlayers("jp", 12)
			UpdateCatalogCharts(9000)
			RecordCatalogSync("jp", "ok")

			Convey("Then the counters and gauges move", func() {
				So(testutil.ToFloat64(globalManager.uploadScores.WithLabelValues("failed"))-before, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.leaderboardPlayers.WithLabelValues("jp")), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.catalogCharts), ShouldEqual, 9000)
			})
		})

		Convey("When recording operational metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					UpdateQueueSize(3)
					UpdateQueueCapacity(100)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerCount(4)
					UpdateWorkerActiveCount(1)
					RecordWorkerProcessingLatency(2)
					RecordWorkerError()
					RecordRecompute(5)
					RecordRecomputeError()
					RecordLeaderboardUpdateLatency(0.1)
					RecordLeaderboardQueryLatency(0.1)
					RecordDBQueryLatency("scores.upsert", 1)
					RecordHTTPRequest("/b50", "POST", "200")
					RecordHTTPRequestDuration("/b50", "POST", "200", 12)
					RecordErrorByComponent("api", "bad_request")
					RecordErrorByEndpoint("/b50", "POST", "bad_request")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(10)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the exported registry gathers them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
