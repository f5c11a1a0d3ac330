package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/documind/documind/internal/async"
	"github.com/documind/documind/internal/ingest"
	"github.com/documind/documind/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the async processing queue",
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

			// optional background watcher alongside the API
			if dir := a.cfg.Ingest.WatchDir; dir != "" {
				events, errs, werr := ingest.StartWatcher(ctx, ingest.WatchConfig{
					Roots:       []string{dir},
					InitialScan: true,
					Logger:      logger,
				})
				if werr != nil {
					logger.Error("watcher start failed", "dir", dir, "error", werr)
					return werr
				}
				runner := ingest.NewRunner(a.docs, queue, logger)
				go runner.Run(ctx, events, errs)
				logger.Info("ingest.watching", "dir", dir)
			}

			srv := &http.Server{
				Addr:    a.cfg.Server.HTTPAddr,
				Handler: server.NewServer(a.docs, a.exporter, queue, a.db, logger).Handler(),
			}

			go func() {
				logger.Info("documind listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http serve error", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}
			queue.Shutdown(shutdownCtx)
			return nil
		},
	}
	return cmd
}
