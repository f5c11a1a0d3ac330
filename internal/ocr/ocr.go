// Package ocr turns document files into raw text for the processing
// pipeline. Images go through tesseract; plain-text files are read
// directly. The package only normalizes whitespace: character-level
// repair belongs to the correction stage so every change stays audited.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/documind/documind/constants"
)

// Config controls how the adapter drives tesseract. The zero value works:
// the binary is resolved from PATH and English is assumed.
type Config struct {
	Tesseract     string // binary name or absolute path
	TesseractLang string
	TessdataDir   string

	PSM int // page segmentation mode; 6 suits a uniform text block
	OEM int // engine mode; 1 forces LSTM, 0 keeps tesseract's default
	DPI int // hint for images that carry no resolution metadata

	// EnableTSVConfidence reruns tesseract in TSV mode to average its
	// word confidences. Slower but more honest than the text heuristic.
	EnableTSVConfidence bool
}

// TextResult is what a single file yielded, whichever strategy ran.
type TextResult struct {
	Text       string
	SourceType string // constants.FileTypeImage | constants.FileTypeText
	Method     string // "image-ocr" | "text-file"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float64
}

// Adapter implements the documents.TextExtractor contract over local files.
type Adapter struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewAdapter(cfg Config, logger *slog.Logger) *Adapter {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract routes by extension: image formats go through tesseract, text
// formats are read straight from disk.
func (a *Adapter) Extract(ctx context.Context, path string) (TextResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	a.logger.Debug("ocr.extract.start", "path", path, "ext", ext)

	format, ok := constants.FormatForExt(ext)
	if !ok {
		a.logger.Error("ocr.unsupported_extension", "extension", ext)
		return TextResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	var res TextResult
	var err error
	if format == constants.FileTypeText {
		res, err = a.extractText(path)
	} else {
		res, err = a.extractImage(ctx, path)
	}
	res.Duration = time.Since(start)
	return res, err
}
