// Package replay drives a scripted input workload through per-document
// engines and verifies the records they expose. It is the offline
// counterpart of a real host embedding: everything runs on a manual
// clock, so runs are fast and reproducible.
package replay

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lagtrace/lagtrace/internal/adapters/dispatch"
	"github.com/lagtrace/lagtrace/internal/adapters/tracestore"
	engine "github.com/lagtrace/lagtrace/internal/app"
	"github.com/lagtrace/lagtrace/internal/domain/clock"
	"github.com/lagtrace/lagtrace/internal/domain/model"
	"github.com/lagtrace/lagtrace/internal/domain/rounding"
	"github.com/lagtrace/lagtrace/pkg/logger"
)

// Default frame gap between scenarios when the config leaves it unset.
const defaultFrameBudget = 2 * time.Second

// documentResult collects everything one simulated document produced.
type documentResult struct {
	docID            string
	drained          []model.TimingRecord
	counts           map[string]int64
	interactions     int64
	wantInteractions int64
	eventsDispatched int
}

// Run executes the complete replay.
func Run(ctx context.Context, config *Config) error {
	_, err := Collect(ctx, config)
	return err
}

// Collect executes the complete replay and returns the run statistics,
// partial on error. The demo daemon polls these for its stats endpoint.
func Collect(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	if config.NumDocuments <= 0 {
		config.NumDocuments = 1
	}
	if config.FrameBudget <= 0 {
		config.FrameBudget = defaultFrameBudget
	}
	if config.Granularity <= 0 {
		config.Granularity = rounding.DefaultGranularity
	}
	if config.DurationThreshold <= 0 {
		config.DurationThreshold = dispatch.DefaultDurationThreshold
	}

	logger.Get().Info(ctx, "starting lagtrace replay",
		logger.Int("documents", config.NumDocuments),
		logger.Int64("seed", config.Seed),
		logger.String("archive", config.ArchivePath),
		logger.String("frameBudget", config.FrameBudget.String()),
		logger.Any("verbose", config.Verbose))

	// Step 1: open the optional trace archive
	var store *tracestore.Store
	if config.ArchivePath != "" {
		var err error
		store, err = tracestore.Open(config.ArchivePath)
		if err != nil {
			return stats, fmt.Errorf("trace archive setup failed: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Get().Error(context.Background(), "failed to close trace archive", logger.Error(err))
			}
		}()
	}

	rng := newRNG(config.Seed)

	// Step 2: drive each document through the scenario set
	results := make([]*documentResult, 0, config.NumDocuments)
	for i := 0; i < config.NumDocuments; i++ {
		select {
		case <-ctx.Done():
			return stats, fmt.Errorf("context cancelled during replay: %w", ctx.Err())
		default:
		}

		result, err := runDocument(ctx, config, rng, stats)
		if err != nil {
			return stats, fmt.Errorf("document replay failed: %w", err)
		}
		results = append(results, result)

		// Step 3: archive drained records as they come
		if store != nil {
			if err := archiveDocument(store, result); err != nil {
				logger.Get().Warn(ctx, "failed to archive document records", logger.Error(err))
			} else {
				stats.RecordsArchived += len(result.drained)
			}
		}
	}

	// Step 4: verify what every document exposed
	if err := verifyResults(ctx, config, results, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "replay completed successfully")
	return stats, nil
}

// runDocument plays the full scenario set against one fresh engine and
// tears the document down afterwards.
func runDocument(ctx context.Context, config *Config, rng *rand.Rand, stats *Stats) (*documentResult, error) {
	clk := clock.NewManual()
	eng := engine.New(
		engine.WithClock(clk),
		engine.WithGranularity(config.Granularity),
		engine.WithDurationThreshold(config.DurationThreshold),
		engine.WithIdleWindow(config.IdleWindow),
		engine.WithFallbackDeadline(config.FallbackDeadline),
		engine.WithQueueCapacity(config.QueueCapacity),
		engine.WithZeroHandlerRecords(config.EmitZeroHandlerRecords),
	)
	defer eng.Close()

	result := &documentResult{
		docID:  eng.DocumentID(),
		counts: make(map[string]int64),
	}

	var cursor time.Duration
	for _, sc := range generateScenarios(ctx, rng) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		playScenario(eng, clk, cursor, sc, result)
		stats.ScenariosPlayed++
		result.wantInteractions += sc.WantInteractions
		cursor += sc.Length + config.FrameBudget
	}

	// Closing checkpoint so nothing is left pending.
	eng.NotifyRenderCheckpoint(cursor)

	result.drained = eng.DrainQueue()
	result.counts = eng.ReadCounts()
	result.interactions = eng.ReadInteractionCount()

	stats.DocumentsDriven++
	stats.EventsDispatched += result.eventsDispatched
	stats.RecordsDrained += len(result.drained)
	stats.InteractionsSeen += int(result.interactions)
	for _, rec := range result.drained {
		if rec.EntryKind == model.KindFirstInput {
			stats.FirstInputsEmitted++
		}
	}

	if config.Verbose {
		logger.Get().Info(ctx, "document replay done",
			logger.String("doc", result.docID),
			logger.Int("drained", len(result.drained)),
			logger.Int64("interactions", result.interactions))
	}
	return result, nil
}

// playScenario issues the scenario's host notifications against the
// engine, offset by the document timeline cursor.
func playScenario(eng *engine.Engine, clk *clock.Manual, base time.Duration, sc Scenario, result *documentResult) {
	for _, s := range sc.Steps {
		at := base + s.at
		switch s.kind {
		case stepEvent:
			clk.Set(at)
			h := eng.NotifyDispatchBegin(s.eventType, at, s.cancelable, true, s.sourceID)
			clk.Set(at + s.handlerCost)
			eng.NotifyHandlersRan(h)
			result.eventsDispatched++
		case stepCheckpoint:
			eng.NotifyRenderCheckpoint(at)
		case stepCancel:
			clk.Set(at)
			eng.NotifyInteractionCanceled(s.sourceID)
		}
	}
}

// archiveDocument writes one document's drained records to the archive.
func archiveDocument(store *tracestore.Store, result *documentResult) error {
	records := make([]tracestore.Record, 0, len(result.drained))
	for _, rec := range result.drained {
		records = append(records, tracestore.Record{
			DocID:             result.docID,
			EventType:         rec.EventType,
			EntryKind:         string(rec.EntryKind),
			StartMS:           tracestore.MS(rec.StartTime),
			ProcessingStartMS: tracestore.MS(rec.ProcessingStart),
			ProcessingEndMS:   tracestore.MS(rec.ProcessingEnd),
			DurationMS:        tracestore.MS(rec.Duration),
			Cancelable:        rec.Cancelable,
			InteractionID:     rec.InteractionID,
			SourceID:          rec.SourceID,
		})
	}
	return store.Archive(records)
}

// newRNG builds the scenario jitter source. Seed 0 means a fresh run
// every time; uuid is backed by crypto/rand.
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = int64(uuid.New().ID())<<32 ^ int64(uuid.New().ID())
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // workload jitter, not security
}

// displayFinalStats prints the final replay statistics.
func displayFinalStats(stats *Stats) {
	var recordsPerDocument float64
	if stats.DocumentsDriven > 0 {
		recordsPerDocument = float64(stats.RecordsDrained) / float64(stats.DocumentsDriven)
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("documentsDriven", stats.DocumentsDriven),
		logger.Int("scenariosPlayed", stats.ScenariosPlayed),
		logger.Int("eventsDispatched", stats.EventsDispatched),
		logger.Int("recordsDrained", stats.RecordsDrained),
		logger.Int("firstInputsEmitted", stats.FirstInputsEmitted),
		logger.Int("interactionsSeen", stats.InteractionsSeen),
		logger.Int("recordsArchived", stats.RecordsArchived),
		logger.Int("verificationErrors", stats.VerificationErrors),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("recordsPerDocument", recordsPerDocument))
}
