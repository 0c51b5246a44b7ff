package firstinput_test

import (
	"testing"

	"github.com/lagtrace/lagtrace/internal/domain/firstinput"
	"github.com/lagtrace/lagtrace/internal/domain/interaction"
	"github.com/lagtrace/lagtrace/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(eventType string, id uint64) model.TimingRecord {
	return model.TimingRecord{
		EventType:     eventType,
		InteractionID: id,
		EntryKind:     model.KindEvent,
	}
}

func TestFirstInput(t *testing.T) {
	Convey("Given a waiting first-input tracker", t, func() {
		var emitted []model.TimingRecord
		tr := firstinput.NewTracker(func(rec model.TimingRecord) {
			emitted = append(emitted, rec)
		})

		Convey("When the first qualifying record is a keydown", func() {
			tr.Observe(record("keydown", 12))

			Convey("Then a first-input clone is emitted immediately", func() {
				So(emitted, ShouldHaveLength, 1)
				So(emitted[0].EntryKind, ShouldEqual, model.KindFirstInput)
				So(emitted[0].EventType, ShouldEqual, "keydown")
				So(emitted[0].InteractionID, ShouldEqual, uint64(12))
				So(tr.State(), ShouldEqual, firstinput.StateDone)
			})

			Convey("And no later record produces a second emission", func() {
				tr.Observe(record("click", 20))
				tr.Observe(record("pointerdown", 28))
				So(emitted, ShouldHaveLength, 1)
			})
		})

		Convey("When the first qualifying record is a pointerdown", func() {
			tr.Observe(record("pointerdown", 40))

			Convey("Then it is held, not emitted", func() {
				So(emitted, ShouldBeEmpty)
				So(tr.State(), ShouldEqual, firstinput.StatePendingPointerDown)
			})

			Convey("And a commit for its session releases it", func() {
				tr.OnSessionEvent(interaction.SessionEvent{ID: 40, State: interaction.StateCommitted})
				So(emitted, ShouldHaveLength, 1)
				So(emitted[0].EventType, ShouldEqual, "pointerdown")
				So(emitted[0].EntryKind, ShouldEqual, model.KindFirstInput)
				So(tr.State(), ShouldEqual, firstinput.StateDone)
			})

			Convey("And a revoke discards it and re-arms the machine", func() {
				tr.OnSessionEvent(interaction.SessionEvent{ID: 40, State: interaction.StateRevoked})
				So(emitted, ShouldBeEmpty)
				So(tr.State(), ShouldEqual, firstinput.StateWaiting)

				tr.Observe(record("mousedown", 55))
				So(emitted, ShouldHaveLength, 1)
				So(emitted[0].EventType, ShouldEqual, "mousedown")
			})

			Convey("And session events for other sessions are ignored", func() {
				tr.OnSessionEvent(interaction.SessionEvent{ID: 999, State: interaction.StateCommitted})
				So(emitted, ShouldBeEmpty)
				So(tr.State(), ShouldEqual, firstinput.StatePendingPointerDown)
			})
		})

		Convey("When non-qualifying records arrive first", func() {
			tr.Observe(record("pointerup", 7))
			tr.Observe(record("mousemove", 0))
			tr.Observe(record("wheel", 0))

			Convey("Then the machine keeps waiting", func() {
				So(emitted, ShouldBeEmpty)
				So(tr.State(), ShouldEqual, firstinput.StateWaiting)
			})
		})
	})
}
