package counts_test

import (
	"sync"
	"testing"

	"github.com/lagtrace/lagtrace/internal/adapters/counts"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	Convey("Given a fresh count table", t, func() {
		tbl := counts.NewTable()

		Convey("Then all counters start at zero", func() {
			So(tbl.Count("pointerdown"), ShouldEqual, 0)
			So(tbl.Interactions(), ShouldEqual, 0)
			So(tbl.Snapshot(), ShouldBeEmpty)
		})

		Convey("When incrementing event type counters", func() {
			tbl.Increment("pointerdown")
			tbl.Increment("pointerdown")
			tbl.Increment("keydown")

			Convey("Then counts accumulate per type", func() {
				So(tbl.Count("pointerdown"), ShouldEqual, 2)
				So(tbl.Count("keydown"), ShouldEqual, 1)
				So(tbl.Count("click"), ShouldEqual, 0)
			})

			Convey("And the snapshot is an independent copy", func() {
				snap := tbl.Snapshot()
				So(snap["pointerdown"], ShouldEqual, 2)
				snap["pointerdown"] = 100
				So(tbl.Count("pointerdown"), ShouldEqual, 2)
			})
		})

		Convey("When incrementing the interaction counter", func() {
			tbl.IncrementInteractions()
			tbl.IncrementInteractions()

			Convey("Then it accumulates independently of event counts", func() {
				So(tbl.Interactions(), ShouldEqual, 2)
				So(tbl.Snapshot(), ShouldBeEmpty)
			})
		})

		Convey("When reads race with writes", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					for j := 0; j < 500; j++ {
						tbl.Increment("click")
						tbl.IncrementInteractions()
					}
				}()
				go func() {
					defer wg.Done()
					for j := 0; j < 500; j++ {
						_ = tbl.Snapshot()
						_ = tbl.Interactions()
					}
				}()
			}
			wg.Wait()

			Convey("Then the final counts are exact", func() {
				So(tbl.Count("click"), ShouldEqual, 4000)
				So(tbl.Interactions(), ShouldEqual, 4000)
			})
		})
	})
}
