package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/documents"
	"github.com/documind/documind/internal/export"
	"github.com/documind/documind/internal/ner"
	"github.com/documind/documind/internal/ocr"
	"github.com/documind/documind/internal/pipeline"
	"github.com/documind/documind/internal/repository"
)

// newLogger wires the process-wide logger. One-shot commands log to
// stderr so stdout stays clean for their output.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// app is the wired service graph shared by all subcommands.
type app struct {
	cfg      *common.Config
	db       *sql.DB
	docs     *documents.Service
	exporter *export.Service
	engine   *pipeline.Processor
	logger   *slog.Logger
}

func buildApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	docsRepo := repository.NewDocumentRepository(db, logger)
	extractionsRepo := repository.NewExtractionRepository(db, logger)
	correctionsRepo := repository.NewCorrectionRepository(db, extractionsRepo, logger)

	engine := pipeline.NewProcessor(pipelineConfig(cfg, logger))

	adapter := ocr.NewAdapter(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.Languages,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		DPI:           cfg.OCR.DPI,
	}, logger)

	docsService := documents.NewService(docsRepo, extractionsRepo, correctionsRepo, adapter, engine, logger)
	exporter := export.NewService(extractionsRepo, docsRepo, logger)

	return &app{
		cfg:      cfg,
		db:       db,
		docs:     docsService,
		exporter: exporter,
		engine:   engine,
		logger:   logger,
	}, nil
}

func (a *app) Close() {
	repository.Close(a.db, a.logger)
}

// pipelineConfig assembles the engine configuration. Entity recognition
// and the skill vocabulary are both optional; the engine degrades to
// pattern extraction without them.
func pipelineConfig(cfg *common.Config, logger *slog.Logger) pipeline.Config {
	var recognizer ner.Recognizer
	if cfg.NER.ServiceURL != "" {
		recognizer = ner.NewHTTPRecognizer(ner.ClientConfig{
			BaseURL: cfg.NER.ServiceURL,
			Timeout: cfg.NER.Timeout,
			Logger:  logger,
		})
		logger.Info("ner.enabled", "url", cfg.NER.ServiceURL)
	} else {
		logger.Warn("NER_URL not configured, entity extraction will be skipped")
	}

	var skills []string
	if cfg.Pipeline.SkillsFile != "" {
		loaded, err := ner.LoadSkills(cfg.Pipeline.SkillsFile)
		if err != nil {
			logger.Warn("skills file not loadable, using built-in vocabulary", "path", cfg.Pipeline.SkillsFile, "error", err)
		} else {
			skills = loaded
		}
	}

	return pipeline.Config{
		Recognizer:  recognizer,
		Skills:      skills,
		PhoneRegion: cfg.Pipeline.PhoneRegion,
		Logger:      logger,
	}
}
