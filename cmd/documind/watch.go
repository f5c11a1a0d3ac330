package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/documind/documind/internal/async"
	"github.com/documind/documind/internal/ingest"
)

func watchCmd() *cobra.Command {
	var (
		noScan    bool
		reprocess bool
		debounce  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir> [dir...]",
		Short: "Watch directories and process new documents as they land",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(os.Stdout, slog.LevelInfo)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, logger)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}
			defer a.Close()

			queue := async.NewDocumentQueue(a.docs, logger,
				async.WithWorkers(a.cfg.Pipeline.Workers),
				async.WithQueueSize(a.cfg.Pipeline.QueueSize),
				async.WithProcessTimeout(a.cfg.Pipeline.ProcessTimeout),
			)

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: !noScan,
				Debounce:    debounce,
				Logger:      logger,
			})
			if err != nil {
				logger.Error("watcher start failed", "error", err)
				return err
			}

			runner := ingest.NewRunner(a.docs, queue, logger)
			runner.Reprocess = reprocess
			logger.Info("ingest.watching", "roots", args)
			stats := runner.Run(ctx, events, errs)

			// let in-flight jobs finish before the DB closes
			drainCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Pipeline.ProcessTimeout)
			defer cancel()
			queue.Shutdown(drainCtx)

			fmt.Printf("watched %d files: %d ingested, %d deduplicated, %d failed\n",
				stats.Seen, stats.Ingested, stats.Deduplicated, stats.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noScan, "no-initial-scan", false, "skip the initial directory walk, only react to changes")
	cmd.Flags().BoolVar(&reprocess, "reprocess", false, "requeue files whose content is already known")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "coalesce rapid file events")
	return cmd
}
