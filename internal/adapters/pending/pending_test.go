package pending_test

import (
	"testing"
	"time"

	"github.com/lagtrace/lagtrace/internal/adapters/pending"
	"github.com/lagtrace/lagtrace/internal/domain/clock"
	"github.com/lagtrace/lagtrace/internal/domain/model"
	"github.com/lagtrace/lagtrace/internal/domain/rounding"
	. "github.com/smartystreets/goconvey/convey"
)

func newTable(c clock.Clock, opts ...pending.Option) *pending.Table {
	return pending.NewTable(c, rounding.NewFilter(), opts...)
}

func TestTable(t *testing.T) {
	Convey("Given an empty pending table", t, func() {
		c := clock.NewManual()
		tbl := newTable(c)

		Convey("When beginning a monitored event", func() {
			c.Set(2 * time.Millisecond)
			h := tbl.Begin("pointerdown", 0, true, "pointer-1")

			Convey("Then a handle should be issued", func() {
				So(h, ShouldNotEqual, model.ZeroHandle)
				So(tbl.Len(), ShouldEqual, 1)
			})

			Convey("And finalizing at a checkpoint should round the duration", func() {
				c.Set(60 * time.Millisecond)
				recs := tbl.FinalizeAll(60 * time.Millisecond)

				So(recs, ShouldHaveLength, 1)
				So(recs[0].Duration, ShouldEqual, 64*time.Millisecond)
				So(recs[0].EventType, ShouldEqual, "pointerdown")
				So(recs[0].Cancelable, ShouldBeTrue)
				So(recs[0].SourceID, ShouldEqual, "pointer-1")
				So(tbl.Len(), ShouldEqual, 0)
			})
		})

		Convey("When beginning an unmonitored event", func() {
			h := tbl.Begin("scroll", 0, false, "pointer-1")

			Convey("Then no record should be created", func() {
				So(h, ShouldEqual, model.ZeroHandle)
				So(tbl.Len(), ShouldEqual, 0)
			})
		})

		Convey("When no handler runs", func() {
			c.Set(3 * time.Millisecond)
			tbl.Begin("keydown", 0, false, "keyboard")
			recs := tbl.FinalizeAll(10 * time.Millisecond)

			Convey("Then processingStart should equal processingEnd", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].ProcessingStart, ShouldEqual, recs[0].ProcessingEnd)
				So(recs[0].HandlersRan(), ShouldBeFalse)
			})
		})

		Convey("When a handler runs", func() {
			c.Set(3 * time.Millisecond)
			h := tbl.Begin("keydown", 0, false, "keyboard")
			c.Set(9 * time.Millisecond)
			ok := tbl.MarkProcessingEnd(h)
			recs := tbl.FinalizeAll(10 * time.Millisecond)

			Convey("Then the processing window should be recorded", func() {
				So(ok, ShouldBeTrue)
				So(recs[0].ProcessingStart, ShouldEqual, 3*time.Millisecond)
				So(recs[0].ProcessingEnd, ShouldEqual, 9*time.Millisecond)
				So(recs[0].HandlersRan(), ShouldBeTrue)
			})
		})

		Convey("When marking an orphan handle", func() {
			ok := tbl.MarkProcessingEnd(model.Handle(99))

			Convey("Then it should be a silent no-op", func() {
				So(ok, ShouldBeFalse)
				So(tbl.Len(), ShouldEqual, 0)
			})
		})

		Convey("When multiple events are pending", func() {
			c.Set(time.Millisecond)
			tbl.Begin("pointerdown", 0, true, "p1")
			c.Set(2 * time.Millisecond)
			tbl.Begin("keydown", time.Millisecond, false, "kb")
			recs := tbl.FinalizeAll(20 * time.Millisecond)

			Convey("Then records should come back in dispatch order", func() {
				So(recs, ShouldHaveLength, 2)
				So(recs[0].EventType, ShouldEqual, "pointerdown")
				So(recs[1].EventType, ShouldEqual, "keydown")
			})
		})

		Convey("When the checkpoint arrives past the fallback deadline", func() {
			tbl := newTable(c, pending.WithFallbackDeadline(100*time.Millisecond))
			c.Set(2 * time.Millisecond)
			h := tbl.Begin("click", 0, false, "p1")
			c.Set(10 * time.Millisecond)
			tbl.MarkProcessingEnd(h)

			recs := tbl.FinalizeAll(10 * time.Second)

			Convey("Then processingEnd should bound the duration", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Duration, ShouldEqual, 16*time.Millisecond)
			})
		})

		Convey("When clearing the table at teardown", func() {
			tbl.Begin("pointerdown", 0, true, "p1")
			tbl.Clear()

			Convey("Then nothing should remain to finalize", func() {
				So(tbl.Len(), ShouldEqual, 0)
				So(tbl.FinalizeAll(time.Second), ShouldBeEmpty)
			})
		})
	})
}
