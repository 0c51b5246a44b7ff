package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/lagtrace/lagtrace/internal/replay"
)

// Default configuration constants.
const (
	defaultNumDocuments  = 4
	defaultFrameBudget   = 2 * time.Second
	defaultReplayTimeout = 10 * time.Minute
)

func main() {
	var (
		numDocuments = flag.Int("documents", defaultNumDocuments, "Number of simulated documents to drive")
		seed         = flag.Int64("seed", 0, "Seed for scenario jitter (0 = fresh seed per run)")
		archivePath  = flag.String("archive", "", "SQLite file to archive drained records into")
		frameBudget  = flag.Duration("frame-budget", defaultFrameBudget, "Simulated gap between scenario bursts")
		logFile      = flag.String("log", "", "Log file for replay output (default: replay_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	// Setup logging
	if err := replay.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultReplayTimeout)
	defer cancel()

	// Create replay configuration
	config := &replay.Config{
		NumDocuments: *numDocuments,
		Seed:         *seed,
		ArchivePath:  *archivePath,
		FrameBudget:  *frameBudget,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	// Run the replay
	if err := replay.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Replay failed: " + err.Error() + "\n")
		return
	}
}
