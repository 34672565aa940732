package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	app "github.com/okian/maidx/internal/app"
	"github.com/okian/maidx/internal/config"
	"github.com/okian/maidx/pkg/logger"
	"github.com/okian/maidx/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func setenv(kv ...string) func() {
	for i := 0; i+1 < len(kv); i += 2 {
		_ = os.Setenv(kv[i], kv[i+1])
	}
	return func() {
		for i := 0; i < len(kv); i += 2 {
			_ = os.Unsetenv(kv[i])
		}
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			defer setenv(
				"MAIDX_ADDR", ":8080",
				"MAIDX_QUEUE_SIZE", "1000",
				"MAIDX_WORKER_COUNT", "4",
				"MAIDX_DB_PATH", ":memory:",
			)()

			convey.Convey("Then it is loaded and mapped onto the service", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)

				svc := newService(cfg, logger.Get())
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 4)
				convey.So(stats["queueSize"], convey.ShouldEqual, 1000)
				convey.So(stats["defaultRegion"], convey.ShouldEqual, "jp")
			})
		})

		convey.Convey("When configuration is invalid", func() {
			defer setenv("MAIDX_DEFAULT_REGION", "mars")()

			convey.Convey("Then loading fails", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestHTTPServer(t *testing.T) {
	convey.Convey("Given a started service behind the HTTP server", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.DBPath = ":memory:"
		cfg.WorkerCount = 2
		cfg.CORSOrigins = "https://example.org"

		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := newHTTPServer(ctx, cfg, svc)
		convey.So(srv.Addr, convey.ShouldEqual, ":9080")
		convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)

		convey.Convey("Then the routes answer", func() {
			for _, path := range []string{"/healthz", "/stats", "/leaderboard", "/api-docs", "/openapi.yaml", "/rating?achievement=100&ds=13"} {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And the configured leaderboard cap applies", func() {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=101", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("And the metrics updaters run against it", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background updaters", t, func() {
		convey.Convey("Then they return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, app.New()) }, convey.ShouldNotPanic)
		})

		convey.Convey("And a service that was never started is tolerated", func() {
			convey.So(func() { updateServiceMetrics(app.New()) }, convey.ShouldNotPanic)
		})

		convey.Convey("And a metrics manager can be built on a private registry", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager, convey.ShouldNotBeNil)
		})
	})
}
