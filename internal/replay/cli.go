package replay

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/lagtrace/lagtrace/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "replay_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`Lagtrace Replay Tool
====================

Drives scripted input workloads through per-document latency engines
and verifies the timing records they expose.

Usage:
  go run cmd/replay-events/main.go [options]

Options:
  -documents int
        Number of simulated documents to drive (default 4)
  -seed int
        Seed for scenario jitter; 0 draws a fresh seed per run
  -archive string
        SQLite file to archive drained records into (default: none)
  -frame-budget duration
        Simulated gap between scenario bursts (default 2s)
  -log string
        Log file for replay output (default: replay_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Replay with default settings
  go run cmd/replay-events/main.go

  # Deterministic run archived for SQL inspection
  go run cmd/replay-events/main.go -documents 16 -seed 42 -archive traces.db

  # Verbose run with a custom log file
  go run cmd/replay-events/main.go -verbose -log my_replay.log
`)
}
