// Package pipeline chains classification, extraction, auto-correction and
// validation into a single document-processing engine.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/autocorrect"
	"github.com/documind/documind/internal/classify"
	"github.com/documind/documind/internal/extract"
	"github.com/documind/documind/internal/heuristics"
	"github.com/documind/documind/internal/merge"
	"github.com/documind/documind/internal/ner"
	"github.com/documind/documind/internal/patterns"
	"github.com/documind/documind/internal/validate"
)

const (
	stageClassification = "classification"
	stageExtraction     = "extraction"
	stageCorrection     = "correction"
	stageValidation     = "validation"
)

type Config struct {
	// Recognizer backs entity extraction. A nil recognizer degrades the
	// pipeline to pattern and heuristic extraction only.
	Recognizer ner.Recognizer

	// Skills overrides the skill vocabulary used for resume extraction.
	Skills []string

	// PhoneRegion is the default region for parsing national phone numbers,
	// e.g. "US".
	PhoneRegion string

	Params heuristics.Params
	Logger *slog.Logger
}

// Processor runs the full pipeline over raw document text. It is safe for
// concurrent use; all state is set up once in NewProcessor.
type Processor struct {
	classifier *classify.Classifier
	extractors map[constants.DocumentType]extract.DocExtractor
	fallback   extract.DocExtractor
	corrector  *autocorrect.Corrector
	validator  *validate.Validator
	logger     *slog.Logger
}

func NewProcessor(cfg Config) *Processor {
	if cfg.Params == (heuristics.Params{}) {
		cfg.Params = heuristics.Defaults()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = "US"
	}

	adapter := ner.NewAdapter(ner.Config{
		Recognizer: cfg.Recognizer,
		Skills:     cfg.Skills,
		Params:     cfg.Params,
		Logger:     cfg.Logger,
	})
	deps := extract.Deps{
		Patterns: patterns.NewExtractor(cfg.Logger),
		Entities: adapter,
		Merger:   merge.NewEngine(cfg.Params, cfg.Logger),
		Params:   cfg.Params,
		Logger:   cfg.Logger,
	}

	extractors := map[constants.DocumentType]extract.DocExtractor{
		constants.Invoice: extract.NewInvoiceExtractor(deps),
		constants.Receipt: extract.NewReceiptExtractor(deps),
		constants.Resume:  extract.NewResumeExtractor(deps),
	}

	return &Processor{
		classifier: classify.NewClassifier(cfg.Logger),
		extractors: extractors,
		fallback:   extract.NewFallbackExtractor(deps),
		corrector: autocorrect.NewCorrector(autocorrect.Config{
			PhoneRegion: cfg.PhoneRegion,
			Logger:      cfg.Logger,
		}),
		validator: validate.NewValidator(validate.Config{
			PhoneRegion: cfg.PhoneRegion,
			Params:      cfg.Params,
			Logger:      cfg.Logger,
		}),
		logger: cfg.Logger,
	}
}

// Process runs classification, extraction, correction and validation over
// text. It always returns a result: stage failures and panics are reported
// through the result's Status and Error rather than an error return.
func (p *Processor) Process(ctx context.Context, text string) (result *DocumentResult) {
	start := time.Now()
	stages := make([]StageTiming, 0, 4)
	var cls classify.Result

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline.panic", "panic", r)
			result = failedResult(fmt.Sprintf("pipeline panic: %v", r), cls, start, stages)
		}
	}()

	stageStart := time.Now()
	cls = p.classifier.Classify(text)
	stages = append(stages, StageTiming{Stage: stageClassification, ElapsedMS: msSince(stageStart)})

	stageStart = time.Now()
	extractor := p.extractorFor(cls.DocumentType)
	extracted, err := extractor.Extract(ctx, text)
	if err != nil {
		p.logger.Error("pipeline.extract_failed", "document_type", cls.DocumentType, "error", err)
		stages = append(stages, StageTiming{Stage: stageExtraction, ElapsedMS: msSince(stageStart)})
		return failedResult(err.Error(), cls, start, stages)
	}
	stages = append(stages, StageTiming{Stage: stageExtraction, ElapsedMS: msSince(stageStart)})

	stageStart = time.Now()
	corrected, corrections := p.corrector.Apply(extracted.Fields)
	stages = append(stages, StageTiming{Stage: stageCorrection, ElapsedMS: msSince(stageStart)})

	stageStart = time.Now()
	report := p.validator.Validate(corrected, cls.DocumentType, extracted.Findings)
	stages = append(stages, StageTiming{Stage: stageValidation, ElapsedMS: msSince(stageStart)})

	result = &DocumentResult{
		DocumentType:   cls.DocumentType,
		Classification: cls,
		Fields:         corrected,
		Validation:     report,
		Performance:    Performance{TotalMS: msSince(start), Stages: stages},
		Status:         StatusSuccess,
	}
	p.logger.Info("pipeline.done",
		"document_type", result.DocumentType,
		"confidence", cls.Confidence,
		"fields", corrected.Len(),
		"corrections", corrections,
		"valid", report.DocumentValid,
		"total_ms", result.Performance.TotalMS,
	)
	return result
}

// extractorFor routes a document type to its extractor. Unknown and
// unmapped types fall back to the generic extractor.
func (p *Processor) extractorFor(t constants.DocumentType) extract.DocExtractor {
	if ex, ok := p.extractors[t]; ok {
		return ex
	}
	return p.fallback
}
