package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lagtrace/lagtrace/internal/domain/model"
	"github.com/lagtrace/lagtrace/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestRun(t *testing.T) {
	Convey("Given a deterministic replay configuration", t, func() {
		archive := filepath.Join(t.TempDir(), "traces.db")
		config := &Config{
			NumDocuments: 2,
			Seed:         7,
			ArchivePath:  archive,
			FrameBudget:  2 * time.Second,
		}

		Convey("When the replay runs", func() {
			err := Run(context.Background(), config)

			Convey("Then every document should verify cleanly", func() {
				So(err, ShouldBeNil)
			})

			Convey("Then the trace archive should have been written", func() {
				info, statErr := os.Stat(archive)
				So(statErr, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := Run(ctx, &Config{NumDocuments: 1, Seed: 7, FrameBudget: 2 * time.Second})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestGenerateScenarios(t *testing.T) {
	Convey("Given two jitter sources with the same seed", t, func() {
		ctx := context.Background()
		a := generateScenarios(ctx, newRNG(11))
		b := generateScenarios(ctx, newRNG(11))

		Convey("Then the scenario set should cover the documented shapes", func() {
			So(len(a), ShouldEqual, 6)
			names := make([]string, 0, len(a))
			for _, sc := range a {
				names = append(names, sc.Name)
				So(sc.Steps, ShouldNotBeEmpty)
				So(sc.Length, ShouldBeGreaterThan, 0)
			}
			So(names, ShouldContain, "quick tap")
			So(names, ShouldContain, "scroll cancel")
			So(names, ShouldContain, "ime composition")
		})

		Convey("Then handler cost jitter should be reproducible", func() {
			for i := range a {
				So(len(a[i].Steps), ShouldEqual, len(b[i].Steps))
				for j := range a[i].Steps {
					So(a[i].Steps[j].handlerCost, ShouldEqual, b[i].Steps[j].handlerCost)
				}
			}
		})
	})
}

func TestVerifyDocument(t *testing.T) {
	Convey("Given a document result with rule violations", t, func() {
		result := &documentResult{
			docID: "doc-bad",
			drained: []model.TimingRecord{
				{EventType: "click", EntryKind: model.KindEvent, Duration: 13 * time.Millisecond},
			},
			counts:           map[string]int64{"click": 2},
			eventsDispatched: 1,
			interactions:     3,
			wantInteractions: 1,
		}

		errs := verifyDocument(strictConfig(), result)

		Convey("Then every violation should be reported", func() {
			// off-grid duration, below threshold, no handler work,
			// missing first-input, interaction mismatch, count mismatch
			So(len(errs), ShouldEqual, 6)
		})
	})

	Convey("Given a clean document result", t, func() {
		result := &documentResult{
			docID: "doc-ok",
			drained: []model.TimingRecord{
				{
					EventType: "pointerdown", EntryKind: model.KindFirstInput,
					Duration: 16 * time.Millisecond, ProcessingEnd: 5 * time.Millisecond,
				},
				{
					EventType: "click", EntryKind: model.KindEvent,
					Duration: 56 * time.Millisecond, ProcessingEnd: 5 * time.Millisecond,
				},
			},
			counts:           map[string]int64{"pointerdown": 1, "click": 1},
			eventsDispatched: 2,
			interactions:     1,
			wantInteractions: 1,
		}

		So(verifyDocument(strictConfig(), result), ShouldBeEmpty)
	})
}

func strictConfig() *Config {
	return &Config{
		Granularity:       8 * time.Millisecond,
		DurationThreshold: 50 * time.Millisecond,
	}
}
