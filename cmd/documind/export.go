package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/documind/documind/internal/utils"
)

func exportCmd() *cobra.Command {
	var (
		out     string
		fromStr string
		toStr   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write completed results to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(os.Stderr, slog.LevelInfo)

			var from, to *time.Time
			if fromStr != "" {
				t, err := utils.ParseYMD(fromStr)
				if err != nil {
					return fmt.Errorf("invalid --from date, use YYYY-MM-DD: %w", err)
				}
				from = &t
			}
			if toStr != "" {
				t, err := utils.ParseYMD(toStr)
				if err != nil {
					return fmt.Errorf("invalid --to date, use YYYY-MM-DD: %w", err)
				}
				to = &t
			}

			ctx := context.Background()
			a, err := buildApp(ctx, logger)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}
			defer a.Close()

			xlsx, err := a.exporter.ExportResultsXLSX(ctx, from, to)
			if err != nil {
				logger.Error("export failed", "error", err)
				return err
			}
			if err := os.WriteFile(out, xlsx, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("wrote %s (%d bytes)\n", out, len(xlsx))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "documents.xlsx", "output file path")
	cmd.Flags().StringVar(&fromStr, "from", "", "from date YYYY-MM-DD")
	cmd.Flags().StringVar(&toStr, "to", "", "to date YYYY-MM-DD")
	return cmd
}
