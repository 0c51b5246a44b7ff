package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/lagtrace/lagtrace/pkg/metrics"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithPrometheusRegistry(reg))

		Convey("Then construction should register without panicking", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a manager with custom options", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("custom"),
			metrics.WithSubsystem("tracker"),
			metrics.WithHistogramBuckets([]float64{8, 16, 32}),
		)

		Convey("Then metric names should carry the custom namespace", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(f.GetName(), ShouldStartWith, "custom_tracker_")
			}
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording engine activity", func() {
			// Helpers must never panic; values are asserted via the registry.
			metrics.RecordFinalized(64, 5)
			metrics.RecordFinalizedByType("pointerdown")
			metrics.RecordQueued()
			metrics.RecordBelowThreshold()
			metrics.RecordIgnoredEvent("untrusted")
			metrics.RecordOrphanHandle()
			metrics.RecordInteractionCommitted()
			metrics.RecordInteractionRevoked()
			metrics.RecordFirstInput()
			metrics.UpdatePendingSize(3)
			metrics.UpdateQueueSize(2)
			metrics.UpdateQueueCapacity(4096)
			metrics.RecordQueueOverflow()
			metrics.RecordDrain(2)

			Convey("Then the custom registry should gather them", func() {
				families, err := metrics.GetRegistry().Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["lagtrace_engine_records_finalized_total"], ShouldBeTrue)
				So(names["lagtrace_engine_interactions_committed_total"], ShouldBeTrue)
				So(names["lagtrace_engine_first_input_emitted_total"], ShouldBeTrue)
				So(names["lagtrace_engine_dispatch_queue_size"], ShouldBeTrue)
				So(names["lagtrace_engine_event_duration_milliseconds"], ShouldBeTrue)
			})
		})
	})
}
