// runpipeline runs the extraction engine over one text file and prints
// the result, with no database or OCR involved. Debugging tool for
// classifier and extractor behavior.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/documind/documind/internal/pipeline"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runpipeline <text-file | ->")
		os.Exit(2)
	}

	var (
		raw []byte
		err error
	)
	if os.Args[1] == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(os.Args[1])
	}
	if err != nil {
		logger.Error("read input", "arg", os.Args[1], "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine := pipeline.NewProcessor(pipeline.Config{
		PhoneRegion: getenv("PHONE_REGION", "US"),
		Logger:      logger,
	})

	start := time.Now()
	result := engine.Process(ctx, string(raw))
	dur := time.Since(start)

	if result.Status == pipeline.StatusFailed {
		logger.Error("pipeline failed", "error", result.Error, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("pipeline OK",
		"document_type", result.DocumentType,
		"confidence", result.Classification.Confidence,
		"fields", result.Fields.Len(),
		"valid", result.Validation.DocumentValid,
		"duration_ms", dur.Milliseconds(),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
