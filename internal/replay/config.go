package replay

import "time"

// Config holds configuration for a replay run.
type Config struct {
	NumDocuments int           // Number of simulated documents to drive
	Seed         int64         // Deterministic scenario shuffling (0 = random)
	ArchivePath  string        // Optional SQLite archive for drained records
	FrameBudget  time.Duration // Simulated gap between scenario bursts
	LogFile      string        // Log file for replay output
	Verbose      bool          // Enable verbose logging

	// Engine tuning applied to every replayed document. Zero values fall
	// back to the engine defaults.
	DurationThreshold      time.Duration
	Granularity            time.Duration
	IdleWindow             time.Duration
	FallbackDeadline       time.Duration
	QueueCapacity          int
	EmitZeroHandlerRecords bool
}

// Stats holds replay statistics.
type Stats struct {
	DocumentsDriven    int
	ScenariosPlayed    int
	EventsDispatched   int
	RecordsDrained     int
	FirstInputsEmitted int
	InteractionsSeen   int
	RecordsArchived    int
	VerificationErrors int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
