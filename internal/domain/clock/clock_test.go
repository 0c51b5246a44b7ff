package clock_test

import (
	"testing"
	"time"

	"github.com/lagtrace/lagtrace/internal/domain/clock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManualClock(t *testing.T) {
	Convey("Given a manual clock", t, func() {
		c := clock.NewManual()

		Convey("Then it should start at zero", func() {
			So(c.Now(), ShouldEqual, time.Duration(0))
		})

		Convey("When advancing the clock", func() {
			c.Advance(25 * time.Millisecond)

			Convey("Then Now should reflect the advance", func() {
				So(c.Now(), ShouldEqual, 25*time.Millisecond)
			})

			Convey("And a negative advance should be ignored", func() {
				c.Advance(-10 * time.Millisecond)
				So(c.Now(), ShouldEqual, 25*time.Millisecond)
			})
		})

		Convey("When setting an absolute offset", func() {
			c.Set(100 * time.Millisecond)
			So(c.Now(), ShouldEqual, 100*time.Millisecond)

			Convey("Then setting an earlier offset should be ignored", func() {
				c.Set(50 * time.Millisecond)
				So(c.Now(), ShouldEqual, 100*time.Millisecond)
			})
		})
	})
}

func TestMonotonicClock(t *testing.T) {
	Convey("Given a monotonic clock", t, func() {
		c := clock.NewMonotonic()

		Convey("Then readings should never decrease", func() {
			a := c.Now()
			b := c.Now()
			So(a, ShouldBeGreaterThanOrEqualTo, time.Duration(0))
			So(b, ShouldBeGreaterThanOrEqualTo, a)
		})
	})

	Convey("Given a monotonic clock anchored in the past", t, func() {
		c := clock.NewMonotonicAt(time.Now().Add(-time.Second))

		Convey("Then Now should report at least the elapsed offset", func() {
			So(c.Now(), ShouldBeGreaterThanOrEqualTo, time.Second)
		})
	})
}
