package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smartystreets/goconvey/convey"

	"github.com/lagtrace/lagtrace/internal/config"
	"github.com/lagtrace/lagtrace/internal/replay"
	"github.com/lagtrace/lagtrace/pkg/logger"
	"github.com/lagtrace/lagtrace/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			// Test with environment variables
			_ = os.Setenv("LAGTRACE_ADDR", ":8080")
			_ = os.Setenv("LAGTRACE_REPLAY_DOCUMENTS", "2")
			_ = os.Setenv("LAGTRACE_REPLAY_INTERVAL_MS", "500")
			defer func() {
				_ = os.Unsetenv("LAGTRACE_ADDR")
				_ = os.Unsetenv("LAGTRACE_REPLAY_DOCUMENTS")
				_ = os.Unsetenv("LAGTRACE_REPLAY_INTERVAL_MS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ReplayDocuments, convey.ShouldEqual, 2)
				convey.So(cfg.ReplayInterval(), convey.ShouldEqual, 500*time.Millisecond)
			})
		})

		convey.Convey("When testing the metrics endpoint wiring", func() {
			convey.Convey("Then the registry should serve over HTTP", func() {
				handler := promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
				convey.So(handler, convey.ShouldNotBeNil)

				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestStatsHolder(t *testing.T) {
	convey.Convey("Given a stats holder", t, func() {
		holder := &statsHolder{}

		convey.Convey("When no cycle has run yet", func() {
			rec := httptest.NewRecorder()
			holder.serveStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var payload map[string]any
			convey.So(json.Unmarshal(rec.Body.Bytes(), &payload), convey.ShouldBeNil)
			convey.So(payload["cycles"], convey.ShouldEqual, 0)
		})

		convey.Convey("When cycles are recorded", func() {
			holder.record(&replay.Stats{
				DocumentsDriven:    2,
				EventsDispatched:   40,
				RecordsDrained:     12,
				FirstInputsEmitted: 2,
				InteractionsSeen:   30,
				Duration:           5 * time.Millisecond,
			})
			holder.record(&replay.Stats{
				DocumentsDriven:  2,
				EventsDispatched: 40,
				RecordsDrained:   10,
				InteractionsSeen: 30,
				Duration:         4 * time.Millisecond,
			})
			holder.record(nil) // failed cycle, nothing to add

			rec := httptest.NewRecorder()
			holder.serveStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			var payload map[string]any
			convey.So(json.Unmarshal(rec.Body.Bytes(), &payload), convey.ShouldBeNil)
			convey.So(payload["cycles"], convey.ShouldEqual, 2)
			convey.So(payload["documents"], convey.ShouldEqual, 4)
			convey.So(payload["recordsDrained"], convey.ShouldEqual, 22)
			convey.So(payload["lastCycleRecords"], convey.ShouldEqual, 10)
		})
	})
}

func TestRunSimulator(t *testing.T) {
	convey.Convey("Given the replay simulator loop", t, func() {
		convey.Convey("When the context expires before the first tick", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			cfg := config.New()
			holder := &statsHolder{}

			err := runSimulator(ctx, cfg, holder)
			convey.So(err, convey.ShouldEqual, context.DeadlineExceeded)
			convey.So(holder.cycles, convey.ShouldEqual, 0)
		})

		convey.Convey("When at least one tick fires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			cfg := config.New()
			cfg.ReplayDocuments = 1
			cfg.ReplayIntervalMS = 50
			holder := &statsHolder{}

			err := runSimulator(ctx, cfg, holder)
			convey.So(err, convey.ShouldEqual, context.DeadlineExceeded)
			convey.So(holder.cycles, convey.ShouldBeGreaterThan, 0)
		})
	})
}
