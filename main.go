package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pricing-ingest/internal/config"
	"pricing-ingest/internal/pipeline"
	"pricing-ingest/internal/publish"
	"pricing-ingest/internal/telemetry"
)

var (
	dryRun    bool
	noHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "update-pricing",
	Short: "Refresh the generated AI provider pricing dataset",
	Long: `update-pricing scrapes each provider's pricing documentation, falls back to
checked-in fixtures and then to the previous dataset when a source fails,
and writes generated/pricing.json plus a dated history snapshot.

Sources are configured through environment variables such as
OPENAI_PRICING_URL, ANTHROPIC_PRICING_FIXTURE=1 and PRICING_TEST_MODE=1.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUpdate,
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and print the diff without writing anything")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false, "write the canonical file but skip the dated snapshot")
}

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := config.LoadEnvFile(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	config.ConfigureLogging(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("pricing update failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	slog.SetDefault(slog.Default().With("run_id", runID))

	shutdown := telemetry.InitTracing()
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	cfg := config.Load()
	publisher := publish.New(ctx, cfg.RedisURL)
	defer publisher.Close()

	start := time.Now()
	res, err := pipeline.New(cfg, publisher).Run(ctx, pipeline.Options{
		DryRun:    dryRun,
		NoHistory: noHistory,
		Out:       cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	slog.Info("pricing update finished",
		"dry_run", dryRun,
		"written", res.Written,
		"snapshot", res.SnapshotPath,
		"schema_issues", res.Issues,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
