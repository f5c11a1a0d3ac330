package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Runner abstracts running an external binary so tests can script the
// tesseract exchange instead of invoking it.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

// execRunner shells out for real. tesseract writes recognized text to
// stdout and its diagnostics to stderr; both are captured in full.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("ocr.exec_failed",
			"cmd", name,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
			"stderr", truncate(stderr.String(), 8<<10))
		return stdout.Bytes(), stderr.Bytes(), err
	}
	logger.Debug("ocr.exec_ok",
		"cmd", name,
		"elapsed_ms", elapsed.Milliseconds(),
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len())
	return stdout.Bytes(), stderr.Bytes(), nil
}

// truncate caps log payloads; tesseract stderr can run to pages.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}
