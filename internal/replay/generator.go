package replay

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lagtrace/lagtrace/pkg/logger"
)

// Handler cost ranges for jittered scenarios.
const (
	quickCostMin     = 2 * time.Millisecond
	quickCostRange   = 10 * time.Millisecond
	slowCostMin      = 60 * time.Millisecond
	slowCostRange    = 80 * time.Millisecond
	typingCostMin    = 1 * time.Millisecond
	typingCostRange  = 6 * time.Millisecond
	frameInterval    = 16 * time.Millisecond
	typingKeystrokes = 5
)

// generateScenarios builds the scripted scenario set for one document.
// Every document gets the same shapes with jittered handler costs so a
// run exercises both sides of the exposure threshold.
func generateScenarios(ctx context.Context, rng *rand.Rand) []Scenario {
	scenarios := []Scenario{
		quickTap(rng),
		sluggishTap(rng),
		scrollCancel(rng),
		typingBurst(rng),
		imeComposition(rng),
		multiTouch(rng),
	}

	logger.Get().Debug(ctx, "generated scenarios", logger.Int("count", len(scenarios)))
	return scenarios
}

func jitter(rng *rand.Rand, min, span time.Duration) time.Duration {
	return min + time.Duration(rng.Int63n(int64(span)))
}

// quickTap is a responsive press-release-click. Handler costs stay well
// under the exposure threshold, so only the counters and the interaction
// id allocation are exercised.
func quickTap(rng *rand.Rand) Scenario {
	src := "pointer-" + uuid.New().String()[:8]
	cost := jitter(rng, quickCostMin, quickCostRange)

	return Scenario{
		Name: "quick tap",
		Steps: []step{
			event("pointerdown", src, 0, cost, true),
			checkpoint(frameInterval),
			event("pointerup", src, 2*frameInterval, cost, false),
			event("click", src, 2*frameInterval+cost, cost, false),
			checkpoint(3 * frameInterval),
		},
		Length:           4 * frameInterval,
		WantInteractions: 1,
	}
}

// sluggishTap is the same gesture with handlers slow enough that every
// record clears the exposure threshold and lands on the dispatch queue.
func sluggishTap(rng *rand.Rand) Scenario {
	src := "pointer-" + uuid.New().String()[:8]
	cost := jitter(rng, slowCostMin, slowCostRange)

	return Scenario{
		Name: "sluggish tap",
		Steps: []step{
			event("pointerdown", src, 0, cost, true),
			checkpoint(cost + frameInterval),
			event("pointerup", src, cost+2*frameInterval, cost, false),
			event("click", src, 2*cost+2*frameInterval, cost, false),
			checkpoint(3*cost + 3*frameInterval),
		},
		Length:           3*cost + 4*frameInterval,
		WantInteractions: 1,
	}
}

// scrollCancel is a press the platform re-interprets as a scroll: the
// provisional session is revoked and nothing is committed.
func scrollCancel(rng *rand.Rand) Scenario {
	src := "pointer-" + uuid.New().String()[:8]
	cost := jitter(rng, slowCostMin, slowCostRange)

	return Scenario{
		Name: "scroll cancel",
		Steps: []step{
			event("pointerdown", src, 0, cost, true),
			checkpoint(cost + frameInterval),
			cancel(src, cost+2*frameInterval),
			event("pointercancel", src, cost+2*frameInterval, quickCostMin, false),
			checkpoint(cost + 3*frameInterval),
		},
		Length:           cost + 4*frameInterval,
		WantInteractions: 0,
	}
}

// typingBurst is a run of keystrokes. Each keydown and keyup stands on
// its own as a committed interaction.
func typingBurst(rng *rand.Rand) Scenario {
	steps := make([]step, 0, typingKeystrokes*3)
	var at time.Duration
	for i := 0; i < typingKeystrokes; i++ {
		down := jitter(rng, typingCostMin, typingCostRange)
		up := jitter(rng, typingCostMin, typingCostRange)
		steps = append(steps,
			event("keydown", "keyboard", at, down, true),
			event("keyup", "keyboard", at+down+2*time.Millisecond, up, false),
			checkpoint(at+frameInterval),
		)
		at += frameInterval
	}
	steps = append(steps, checkpoint(at+frameInterval))

	return Scenario{
		Name:             "typing burst",
		Steps:            steps,
		Length:           at + 2*frameInterval,
		WantInteractions: 2 * typingKeystrokes,
	}
}

// imeComposition is text entry through an input method editor: the
// whole composition shares one interaction, and the keystrokes carried
// by the composition stay anonymous.
func imeComposition(rng *rand.Rand) Scenario {
	cost := jitter(rng, typingCostMin, typingCostRange)

	return Scenario{
		Name: "ime composition",
		Steps: []step{
			event("compositionstart", "keyboard", 0, cost, false),
			event("keydown", "keyboard", cost, cost, true),
			event("input", "keyboard", 2*cost, cost, false),
			checkpoint(frameInterval),
			event("input", "keyboard", frameInterval+cost, cost, false),
			event("compositionend", "keyboard", frameInterval+2*cost, cost, false),
			checkpoint(2 * frameInterval),
		},
		Length:           3 * frameInterval,
		WantInteractions: 1,
	}
}

// multiTouch is two fingers down and up with interleaved frames; each
// contact point is its own interaction.
func multiTouch(rng *rand.Rand) Scenario {
	s1 := "touch-" + uuid.New().String()[:8]
	s2 := "touch-" + uuid.New().String()[:8]
	cost := jitter(rng, quickCostMin, quickCostRange)

	return Scenario{
		Name: "multi touch",
		Steps: []step{
			event("touchstart", s1, 0, cost, true),
			event("touchstart", s2, 4*time.Millisecond, cost, true),
			checkpoint(frameInterval),
			event("touchend", s1, 2*frameInterval, cost, false),
			checkpoint(3 * frameInterval),
			event("touchend", s2, 3*frameInterval+cost, cost, false),
			checkpoint(4 * frameInterval),
		},
		Length:           5 * frameInterval,
		WantInteractions: 2,
	}
}
