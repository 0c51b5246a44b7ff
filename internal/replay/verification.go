package replay

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/lagtrace/lagtrace/internal/domain/model"
)

// verifyResults checks the records every document exposed against the
// engine's published guarantees.
func verifyResults(ctx context.Context, config *Config, results []*documentResult, stats *Stats) error {
	log.Println("🔍 Verifying replay results...")

	if len(results) == 0 {
		return fmt.Errorf("no documents to verify")
	}

	for _, result := range results {
		for _, err := range verifyDocument(config, result) {
			stats.VerificationErrors++
			log.Printf("⚠️  Document %s: %v", result.docID, err)
		}
	}

	if stats.VerificationErrors > 0 {
		return fmt.Errorf("%d verification errors across %d documents", stats.VerificationErrors, len(results))
	}

	log.Println("✅ All documents verified")
	displaySlowestRecords(results, config.Verbose)
	return nil
}

// verifyDocument checks one document's drained records, counters and
// interaction totals.
func verifyDocument(config *Config, result *documentResult) []error {
	var errs []error

	firstInputs := 0
	for i, rec := range result.drained {
		if rec.Duration <= 0 {
			errs = append(errs, fmt.Errorf("record %d (%s) has non-positive duration %s", i, rec.EventType, rec.Duration))
		}
		if rec.Duration%config.Granularity != 0 {
			errs = append(errs, fmt.Errorf("record %d (%s) duration %s is off the rounding grid", i, rec.EventType, rec.Duration))
		}

		switch rec.EntryKind {
		case model.KindFirstInput:
			firstInputs++
		case model.KindEvent:
			if rec.Duration <= config.DurationThreshold {
				errs = append(errs, fmt.Errorf("record %d (%s) duration %s leaked below the exposure threshold", i, rec.EventType, rec.Duration))
			}
			if !rec.HandlersRan() && !config.EmitZeroHandlerRecords {
				errs = append(errs, fmt.Errorf("record %d (%s) exposed without any handler work", i, rec.EventType))
			}
		default:
			errs = append(errs, fmt.Errorf("record %d has unknown entry kind %q", i, rec.EntryKind))
		}
	}

	if firstInputs != 1 {
		errs = append(errs, fmt.Errorf("expected exactly one first-input record, got %d", firstInputs))
	}

	if result.interactions != result.wantInteractions {
		errs = append(errs, fmt.Errorf("interaction counter is %d, scenarios committed %d", result.interactions, result.wantInteractions))
	}

	var counted int64
	for _, n := range result.counts {
		counted += n
	}
	if counted != int64(result.eventsDispatched) {
		errs = append(errs, fmt.Errorf("counters saw %d events, host dispatched %d", counted, result.eventsDispatched))
	}

	return errs
}

// displaySlowestRecords shows the slowest exposed records across the run.
func displaySlowestRecords(results []*documentResult, verbose bool) {
	var all []model.TimingRecord
	for _, result := range results {
		all = append(all, result.drained...)
	}
	if len(all) == 0 {
		return
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Duration > all[j].Duration
	})

	topN := 10
	if len(all) < topN {
		topN = len(all)
	}

	log.Printf("🐢 Top %d slowest exposed records:", topN)
	for i := 0; i < topN; i++ {
		rec := all[i]
		log.Printf("   %d. %s (%s) - duration: %s, interaction: %d", i+1, rec.EventType, rec.EntryKind, rec.Duration, rec.InteractionID)
	}

	if verbose {
		avg := calculateAverageDuration(all)
		log.Printf(`📊 Duration statistics:
   Records: %d
   Average: %s
   Maximum: %s
   Minimum: %s
`, len(all), avg, all[0].Duration, all[len(all)-1].Duration)
	}
}

// calculateAverageDuration averages the exposed record durations.
func calculateAverageDuration(records []model.TimingRecord) time.Duration {
	if len(records) == 0 {
		return 0
	}
	var sum int64
	for _, rec := range records {
		sum += int64(rec.Duration)
	}
	return time.Duration(sum / int64(len(records)))
}
