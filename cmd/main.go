package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lagtrace/lagtrace/internal/config"
	"github.com/lagtrace/lagtrace/internal/replay"
	"github.com/lagtrace/lagtrace/pkg/logger"
	"github.com/lagtrace/lagtrace/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to keep /metrics focused on
	// the engine's own instruments.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	holder := &statsHolder{}

	g, ctx := errgroup.WithContext(ctx)

	// Replay simulator: a fresh batch of documents per cycle, so the
	// metrics and stats endpoints always have live data behind them.
	g.Go(func() error {
		return runSimulator(ctx, cfg, holder)
	})

	// HTTP surface: /metrics, /stats, /healthz.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", holder.serveStats)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g.Go(func() error {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown once the root context is cancelled.
	g.Go(func() error {
		<-ctx.Done()
		loggerInstance.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		loggerInstance.Error(context.Background(), "daemon exited with error", logger.Error(err))
		return
	}

	loggerInstance.Info(context.Background(), "server stopped")
}

// runSimulator replays a batch of simulated documents on every tick and
// publishes the run statistics for the stats endpoint.
func runSimulator(ctx context.Context, cfg *config.Config, holder *statsHolder) error {
	replayConfig := &replay.Config{
		NumDocuments:           cfg.ReplayDocuments,
		DurationThreshold:      cfg.DurationThreshold(),
		Granularity:            cfg.Granularity(),
		IdleWindow:             cfg.IdleWindow(),
		FallbackDeadline:       cfg.FallbackDeadline(),
		QueueCapacity:          cfg.QueueCapacity,
		EmitZeroHandlerRecords: cfg.EmitZeroHandlerRecords,
	}

	ticker := time.NewTicker(cfg.ReplayInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats, err := replay.Collect(ctx, replayConfig)
			if err != nil {
				logger.Get().Warn(ctx, "replay cycle failed", logger.Error(err))
			}
			holder.record(stats)
		}
	}
}

// statsHolder accumulates replay cycle statistics for /stats.
type statsHolder struct {
	mu     sync.RWMutex
	cycles int
	last   *replay.Stats
	totals struct {
		Documents    int
		Events       int
		Records      int
		FirstInputs  int
		Interactions int
		Errors       int
	}
}

func (h *statsHolder) record(stats *replay.Stats) {
	if stats == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cycles++
	h.last = stats
	h.totals.Documents += stats.DocumentsDriven
	h.totals.Events += stats.EventsDispatched
	h.totals.Records += stats.RecordsDrained
	h.totals.FirstInputs += stats.FirstInputsEmitted
	h.totals.Interactions += stats.InteractionsSeen
	h.totals.Errors += stats.VerificationErrors
}

func (h *statsHolder) serveStats(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	payload := map[string]any{
		"cycles":             h.cycles,
		"documents":          h.totals.Documents,
		"eventsDispatched":   h.totals.Events,
		"recordsDrained":     h.totals.Records,
		"firstInputsEmitted": h.totals.FirstInputs,
		"interactionsSeen":   h.totals.Interactions,
		"verificationErrors": h.totals.Errors,
	}
	if h.last != nil {
		payload["lastCycleDuration"] = h.last.Duration.String()
		payload["lastCycleRecords"] = h.last.RecordsDrained
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Get().Error(context.Background(), "failed to encode stats", logger.Error(err))
	}
}
