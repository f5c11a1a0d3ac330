package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func processCmd() *cobra.Command {
	var (
		text     string
		useStdin bool
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Classify and extract one document, print the result as JSON",
		Long: `Process runs a single document through the full engine and prints the
stored result to stdout. The run is persisted like any other, so a later
"documind export" includes it.

Give a file path, --text, or --stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := newLogger(os.Stderr, level)

			sources := 0
			if len(args) == 1 {
				sources++
			}
			if text != "" {
				sources++
			}
			if useStdin {
				sources++
			}
			if sources != 1 {
				return fmt.Errorf("give exactly one of a file path, --text, or --stdin")
			}

			ctx := context.Background()
			a, err := buildApp(ctx, logger)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}
			defer a.Close()

			if useStdin {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}

			var resultJSON []byte
			if len(args) == 1 {
				doc, dedup, err := a.docs.IngestPath(ctx, args[0])
				if err != nil {
					return err
				}
				if dedup {
					logger.Warn("file content already known, reprocessing", "document_id", doc.ID)
				}
				ex, err := a.docs.ProcessDocument(ctx, doc.ID)
				if err != nil {
					return err
				}
				resultJSON = ex.ResultJSON
			} else {
				doc, _, err := a.docs.CreateFromText(ctx, "", text)
				if err != nil {
					return err
				}
				ex, err := a.docs.ProcessText(ctx, doc.ID, text)
				if err != nil {
					return err
				}
				resultJSON = ex.ResultJSON
			}

			var pretty map[string]any
			if err := json.Unmarshal(resultJSON, &pretty); err != nil {
				return fmt.Errorf("decode result: %w", err)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "process this text instead of a file")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "read text to process from stdin")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every engine stage")
	return cmd
}
