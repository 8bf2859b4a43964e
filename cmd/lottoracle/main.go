// Command lottoracle maintains a local archive of Union Lotto draws and picks
// numbers by sampling against their frequency statistics.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/lottoracle/internal/archive"
	"github.com/rewired-gh/lottoracle/internal/config"
	"github.com/rewired-gh/lottoracle/internal/logger"
	"github.com/rewired-gh/lottoracle/internal/predictor"
	"github.com/rewired-gh/lottoracle/internal/sampler"
	"github.com/rewired-gh/lottoracle/internal/zhcw"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "lottoracle",
		Short: "Union Lotto draw archive and frequency-guided number picker",
		Long: `Lottoracle keeps a local archive of Union Lotto (shuangseqiu) draws and
picks numbers by sampling against historical ball frequencies, favoring
the balls drawn least often. The bias is for fun; every draw is
independent and no pick is more likely to win than any other.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to configuration file")

	cmd.AddCommand(
		newUpdateCommand(&configPath),
		newBackfillCommand(&configPath),
		newReportCommand(&configPath),
		newPredictCommand(&configPath),
		newExportCommand(&configPath),
		newImportCommand(&configPath),
		newWatchCommand(&configPath),
		newVersionCommand(),
	)

	return cmd
}

// loadConfig reads and validates the configuration, then initializes logging.
// When the default config file is absent, built-in defaults plus environment
// variables apply.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if path != "" {
		logger.Debug("Configuration loaded from %s", path)
	}
	return cfg, nil
}

func openArchive(cfg *config.Config) (*archive.Archive, error) {
	path := cfg.Storage.DBPath
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create archive directory: %w", err)
			}
		}
	}
	return archive.Open(path, cfg.GameSpec())
}

func closeArchive(arc *archive.Archive) {
	if err := arc.Close(); err != nil {
		logger.Error("Failed to close archive: %v", err)
	}
}

func newFeedClient(cfg *config.Config) *zhcw.Client {
	return zhcw.NewClient(
		cfg.ZHCW.APIBaseURL,
		cfg.GameSpec(),
		cfg.ZHCW.Timeout,
		cfg.ZHCW.MaxRetries,
		cfg.ZHCW.RetryDelayBase,
	)
}

func newProducer(cfg *config.Config) (*predictor.Producer, error) {
	opts := []predictor.Option{
		predictor.WithName(cfg.Predictor.Name),
		predictor.WithRecentWindow(cfg.RecentWindow()),
		predictor.WithRecentWeight(cfg.Analysis.RecentWeight),
		predictor.WithHistoryLimit(cfg.Predictor.HistoryLimit),
	}
	if cfg.Predictor.Seed != 0 {
		opts = append(opts, predictor.WithSampler(sampler.New(rand.New(rand.NewSource(cfg.Predictor.Seed)))))
	}
	return predictor.New(cfg.GameSpec(), opts...)
}
