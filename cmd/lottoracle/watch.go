package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/lottoracle/internal/archive"
	"github.com/rewired-gh/lottoracle/internal/config"
	"github.com/rewired-gh/lottoracle/internal/logger"
	"github.com/rewired-gh/lottoracle/internal/metrics"
	"github.com/rewired-gh/lottoracle/internal/models"
	"github.com/rewired-gh/lottoracle/internal/predictor"
	"github.com/rewired-gh/lottoracle/internal/telegram"
	"github.com/rewired-gh/lottoracle/internal/zhcw"
)

func newWatchCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll for new draws and predict on every arrival",
		Long: `Watch runs until interrupted. Each cycle fetches the latest page of draws
and archives anything new. When new draws arrive it generates and persists
a global and a recency-weighted pick, optionally pushing them to Telegram.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runWatch(cfg)
		},
	}
}

func runWatch(cfg *config.Config) error {
	arc, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer closeArchive(arc)

	prod, err := newProducer(cfg)
	if err != nil {
		return err
	}
	feed := newFeedClient(cfg)

	var tg *telegram.Client
	if cfg.Telegram.Enabled {
		tg, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram client: %w", err)
		}
		logger.Info("Telegram client initialized")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	met := metrics.New()
	if cfg.Watch.MetricsAddr != "" {
		serveMetrics(ctx, cfg.Watch.MetricsAddr, met)
	}

	if tg != nil {
		tg.ListenForCommands(ctx, telegram.Handlers{
			Status: func() string { return watchStatus(arc) },
			Latest: func() string { return latestPredictions(arc) },
		})
	}

	logger.Info("Starting watch loop (interval: %v, page size: %d, alert after: %d)",
		cfg.Watch.PollInterval, cfg.ZHCW.PageSize, cfg.Watch.AlertAfter)

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Watch cycle failed: %v", err)
			if consecutiveFailures == cfg.Watch.AlertAfter && tg != nil {
				if sendErr := tg.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures >= cfg.Watch.AlertAfter && tg != nil {
				if sendErr := tg.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	runCycle := func() {
		start := time.Now()
		err := runWatchCycle(ctx, cfg, feed, arc, prod, tg, met)
		met.RecordCycle(time.Since(start), err != nil)
		handleCycleResult(err)
	}

	ticker := time.NewTicker(cfg.Watch.PollInterval)
	defer ticker.Stop()

	// Run initial cycle immediately
	runCycle()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch loop stopped")
			return nil
		case <-ticker.C:
			runCycle()
		}
	}
}

func runWatchCycle(
	ctx context.Context,
	cfg *config.Config,
	feed *zhcw.Client,
	arc *archive.Archive,
	prod *predictor.Producer,
	tg *telegram.Client,
	met *metrics.Metrics,
) error {
	logger.Debug("Starting watch cycle")

	added, err := ingestLatest(ctx, feed, arc, cfg.ZHCW.PageSize)
	if err != nil {
		return err
	}
	met.RecordIngested(added)
	met.SetArchiveSize(arc.Len())

	if added == 0 {
		logger.Debug("No new draws this cycle")
		return nil
	}

	global, recent, err := prod.PredictBoth(arc.Draws())
	if err != nil {
		return fmt.Errorf("failed to generate predictions: %w", err)
	}

	preds := []models.Prediction{global, recent}
	for _, p := range preds {
		if err := arc.SavePrediction(p); err != nil {
			return fmt.Errorf("failed to save prediction: %w", err)
		}
		met.RecordPrediction(p.Method)
		logger.Info("Prediction: %s", formatPrediction(p))
	}

	if cfg.Watch.Notify && tg != nil {
		if err := tg.SendPredictions(preds); err != nil {
			return fmt.Errorf("failed to send predictions: %w", err)
		}
		logger.Info("Sent predictions to Telegram")
	}

	return nil
}

// serveMetrics starts the metrics listener and shuts it down when ctx ends.
func serveMetrics(ctx context.Context, addr string, met *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown: %v", err)
		}
	}()
}

func watchStatus(arc *archive.Archive) string {
	latest, ok := arc.LatestIssue()
	if !ok {
		return "Archive is empty."
	}
	return fmt.Sprintf("Archive holds %d draws, latest issue %s.", arc.Len(), latest)
}

func latestPredictions(arc *archive.Archive) string {
	preds, err := arc.Predictions(2)
	if err != nil {
		return fmt.Sprintf("Failed to load predictions: %v", err)
	}
	if len(preds) == 0 {
		return "No predictions yet."
	}
	lines := make([]string, 0, len(preds))
	for _, p := range preds {
		lines = append(lines, formatPrediction(p))
	}
	return strings.Join(lines, "\n")
}
