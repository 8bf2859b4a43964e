package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/lottoracle/internal/analysis"
	"github.com/rewired-gh/lottoracle/internal/archive"
	"github.com/rewired-gh/lottoracle/internal/config"
	"github.com/rewired-gh/lottoracle/internal/logger"
	"github.com/rewired-gh/lottoracle/internal/models"
	"github.com/rewired-gh/lottoracle/internal/telegram"
	"github.com/rewired-gh/lottoracle/internal/zhcw"
)

func newUpdateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch the most recent draws and archive the new ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			arc, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer closeArchive(arc)

			added, err := ingestLatest(cmd.Context(), newFeedClient(cfg), arc, cfg.ZHCW.PageSize)
			if err != nil {
				return err
			}
			fmt.Printf("Archived %d new draws (%d total)\n", added, arc.Len())
			return nil
		},
	}
}

func newBackfillCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fetch the full published draw history and archive it",
		Long: `Backfill requests the entire published draw history in one call. Run it
once to seed a fresh archive; update keeps the archive current afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			arc, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer closeArchive(arc)

			draws, err := newFeedClient(cfg).FetchAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch draw history: %w", err)
			}
			added, err := arc.InsertDraws(draws)
			if err != nil {
				return fmt.Errorf("failed to archive draws: %w", err)
			}
			fmt.Printf("Archived %d new draws (%d total)\n", added, arc.Len())
			return nil
		},
	}
}

func newReportCommand(configPath *string) *cobra.Command {
	var weighted bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print ball frequency tables from the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			arc, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer closeArchive(arc)

			draws := arc.Draws()
			if len(draws) == 0 {
				return fmt.Errorf("archive is empty: run update or backfill first")
			}

			game := cfg.GameSpec()
			if weighted {
				window := cfg.RecentWindow()
				weight := cfg.Analysis.RecentWeight
				reds := analysis.TallyWeighted(draws, game.RedRange(), analysis.RedPicker, window, weight)
				blues := analysis.TallyWeighted(draws, game.BlueRange(), analysis.BluePicker, window, weight)
				fmt.Print(analysis.FormatWeightedReport(reds, blues, len(draws), window, weight))
				return nil
			}

			reds := analysis.Tally(draws, game.RedRange(), analysis.RedPicker)
			blues := analysis.Tally(draws, game.BlueRange(), analysis.BluePicker)
			fmt.Print(analysis.FormatReport(reds, blues, len(draws)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&weighted, "weighted", false, "Count the trailing window of draws more heavily")
	return cmd
}

func newPredictCommand(configPath *string) *cobra.Command {
	var method string
	var notify bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Generate number picks from archived draw frequencies",
		Long: `Predict samples picks using inverse frequency weights, so the balls drawn
least often are favored. The global method counts the whole archive; the
recent method counts a trailing window of draws more heavily.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			arc, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer closeArchive(arc)

			prod, err := newProducer(cfg)
			if err != nil {
				return err
			}

			draws := arc.Draws()
			var preds []models.Prediction
			switch method {
			case "global":
				p, err := prod.PredictGlobal(draws)
				if err != nil {
					return err
				}
				preds = append(preds, p)
			case "recent":
				p, err := prod.PredictRecent(draws)
				if err != nil {
					return err
				}
				preds = append(preds, p)
			case "both":
				global, recent, err := prod.PredictBoth(draws)
				if err != nil {
					return err
				}
				preds = append(preds, global, recent)
			default:
				return fmt.Errorf("unknown method %q: want global, recent, or both", method)
			}

			for _, p := range preds {
				if err := arc.SavePrediction(p); err != nil {
					return fmt.Errorf("failed to save prediction: %w", err)
				}
				fmt.Println(formatPrediction(p))
			}

			if notify {
				tg, err := notifier(cfg)
				if err != nil {
					return err
				}
				if err := tg.SendPredictions(preds); err != nil {
					return fmt.Errorf("failed to send predictions: %w", err)
				}
				logger.Info("Sent %d predictions to Telegram", len(preds))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", "both", "Prediction method: global, recent, or both")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send the picks to the configured Telegram chat")
	return cmd
}

func newExportCommand(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the archived draws as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			arc, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer closeArchive(arc)

			if out == "" {
				return arc.ExportCSV(os.Stdout)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := arc.ExportCSV(f); err != nil {
				f.Close()
				return fmt.Errorf("failed to export draws: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", out, err)
			}
			fmt.Printf("Exported %d draws to %s\n", arc.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Destination file (default stdout)")
	return cmd
}

func newImportCommand(configPath *string) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load draws from CSV into the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			r := io.Reader(os.Stdin)
			if in != "" {
				f, err := os.Open(in)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", in, err)
				}
				defer f.Close()
				r = f
			}

			arc, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer closeArchive(arc)

			added, err := arc.ImportCSV(r)
			if err != nil {
				return fmt.Errorf("failed to import draws: %w", err)
			}
			fmt.Printf("Imported %d new draws (%d total)\n", added, arc.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Source CSV file (default stdin)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("lottoracle v%s\n", version)
			return nil
		},
	}
}

// ingestLatest pulls one page of recent draws and archives whatever is new.
func ingestLatest(ctx context.Context, client *zhcw.Client, arc *archive.Archive, pageSize int) (int, error) {
	draws, err := client.FetchLatest(ctx, pageSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch draws: %w", err)
	}
	added, err := arc.InsertDraws(draws)
	if err != nil {
		return 0, fmt.Errorf("failed to archive draws: %w", err)
	}
	if latest, ok := arc.LatestIssue(); ok {
		logger.Info("Archive holds %d draws through issue %s (%d new)", arc.Len(), latest, added)
	}
	return added, nil
}

func notifier(cfg *config.Config) (*telegram.Client, error) {
	if !cfg.Telegram.Enabled {
		return nil, fmt.Errorf("telegram is disabled in configuration")
	}
	tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram client: %w", err)
	}
	return tg, nil
}

func formatPrediction(p models.Prediction) string {
	line := fmt.Sprintf("[%s] reds %s blue %02d", p.Method, displayBalls(p.RedBalls), p.BlueBall)
	if p.Method == models.MethodRecencyWeighted {
		line += fmt.Sprintf(" (window %d)", p.RecentWindow)
	}
	return line
}

func displayBalls(balls []int) string {
	parts := make([]string, len(balls))
	for i, ball := range balls {
		parts[i] = fmt.Sprintf("%02d", ball)
	}
	return strings.Join(parts, " ")
}
