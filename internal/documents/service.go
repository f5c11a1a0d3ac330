// Package documents orchestrates the document lifecycle: ingest a file,
// OCR it, run the processing pipeline, persist the run, and apply manual
// corrections to stored results.
package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/ocr"
	"github.com/documind/documind/internal/pipeline"
	"github.com/documind/documind/internal/repository"
)

// TextExtractor is the OCR dependency. The ocr.Adapter satisfies it.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.TextResult, error)
}

type Service struct {
	docs        repository.DocumentRepository
	extractions repository.ExtractionRepository
	corrections repository.CorrectionRepository
	ocr         TextExtractor
	engine      *pipeline.Processor
	logger      *slog.Logger
}

func NewService(
	docs repository.DocumentRepository,
	extractions repository.ExtractionRepository,
	corrections repository.CorrectionRepository,
	textExtractor TextExtractor,
	engine *pipeline.Processor,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		docs:        docs,
		extractions: extractions,
		corrections: corrections,
		ocr:         textExtractor,
		engine:      engine,
		logger:      logger,
	}
}

// IngestPath hashes a local file and registers it, deduplicating on
// content. The returned bool reports whether the file was already known.
func (s *Service) IngestPath(ctx context.Context, path string) (*entity.Document, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, common.NewAppError("INGEST_ERROR", "resolve path", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if _, ok := constants.FormatForExt(ext); !ok {
		return nil, false, common.NewAppError("UNSUPPORTED_FILE", fmt.Sprintf("unsupported extension: %q", ext), common.ErrInvalidInput)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, false, common.NewAppError("INGEST_ERROR", "open file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("documents.ingest_close_failed", "path", abs, "error", cerr)
		}
	}()

	st, err := f.Stat()
	if err != nil {
		return nil, false, common.NewAppError("INGEST_ERROR", "stat file", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, false, common.NewAppError("INGEST_ERROR", "hash file", err)
	}

	doc, dedup, err := s.docs.UpsertByHash(ctx, &entity.Document{
		SourcePath:  abs,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    st.Size(),
		ContentHash: hex.EncodeToString(h.Sum(nil)),
		Status:      constants.DocStatusQueued,
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("documents.ingested", "document_id", doc.ID, "path", abs, "deduplicated", dedup)
	return doc, dedup, nil
}

// CreateFromText registers a raw text submission as a document with no
// backing file. Processing reads the text from the extraction row.
func (s *Service) CreateFromText(ctx context.Context, filename, text string) (*entity.Document, bool, error) {
	if text == "" {
		return nil, false, common.NewAppError("EMPTY_TEXT", "text is required", common.ErrInvalidInput)
	}
	if filename == "" {
		filename = "untitled.txt"
	}
	sum := sha256.Sum256([]byte(text))
	doc, dedup, err := s.docs.UpsertByHash(ctx, &entity.Document{
		Filename:    filename,
		FileExt:     "txt",
		FileSize:    int64(len(text)),
		ContentHash: hex.EncodeToString(sum[:]),
		Status:      constants.DocStatusQueued,
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, false, err
	}
	return doc, dedup, nil
}

// ProcessDocument runs OCR and the pipeline for a stored document and
// persists the outcome as a new extraction run.
func (s *Service) ProcessDocument(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.SourcePath == "" {
		return nil, common.NewAppError("NO_SOURCE_FILE", "document has no backing file; use ProcessText", common.ErrInvalidInput)
	}

	ex, err := s.extractions.Start(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, constants.DocStatusProcessing); err != nil {
		return nil, err
	}

	res, err := s.ocr.Extract(ctx, doc.SourcePath)
	if err != nil {
		s.logger.Error("documents.ocr_failed", "document_id", doc.ID, "error", err)
		_ = s.extractions.FinishFailure(ctx, ex.ID, err.Error(), nil)
		_ = s.docs.UpdateStatus(ctx, doc.ID, constants.DocStatusFailed)
		return nil, common.NewAppError("OCR_ERROR", "text extraction failed", err)
	}
	if err := s.extractions.RecordOCR(ctx, ex.ID, res.Text, res.Confidence, res.Method); err != nil {
		return nil, err
	}
	s.logger.Debug("documents.ocr_done",
		"document_id", doc.ID, "extraction_id", ex.ID,
		"method", res.Method, "confidence", res.Confidence, "bytes", len(res.Text))

	return s.runPipeline(ctx, doc, ex.ID, res.Text)
}

// ProcessText runs the pipeline over text that arrived without a file.
func (s *Service) ProcessText(ctx context.Context, documentID uuid.UUID, text string) (*entity.Extraction, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	ex, err := s.extractions.Start(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, constants.DocStatusProcessing); err != nil {
		return nil, err
	}
	if err := s.extractions.RecordOCR(ctx, ex.ID, text, 1.0, "text-input"); err != nil {
		return nil, err
	}
	return s.runPipeline(ctx, doc, ex.ID, text)
}

func (s *Service) runPipeline(ctx context.Context, doc *entity.Document, extractionID uuid.UUID, text string) (*entity.Extraction, error) {
	result := s.engine.Process(ctx, text)
	raw, err := json.Marshal(result)
	if err != nil {
		_ = s.extractions.FinishFailure(ctx, extractionID, err.Error(), nil)
		_ = s.docs.UpdateStatus(ctx, doc.ID, constants.DocStatusFailed)
		return nil, common.NewAppError("ENCODE_ERROR", "encode pipeline result", err)
	}

	if result.Status == pipeline.StatusFailed {
		_ = s.extractions.FinishFailure(ctx, extractionID, result.Error, raw)
		_ = s.docs.UpdateStatus(ctx, doc.ID, constants.DocStatusFailed)
		return nil, common.NewAppError("PIPELINE_ERROR", result.Error, common.ErrInternal)
	}

	err = s.extractions.FinishSuccess(ctx, extractionID, repository.FinishParams{
		DocumentType:             string(result.DocumentType),
		ClassificationConfidence: result.Classification.Confidence,
		ResultJSON:               raw,
		FieldCount:               result.Fields.Len(),
		DocumentValid:            result.Validation.DocumentValid,
	})
	if err != nil {
		return nil, err
	}
	if err := s.docs.MarkProcessed(ctx, doc.ID, constants.DocStatusCompleted, time.Now().UTC()); err != nil {
		return nil, err
	}

	s.logger.Info("documents.processed",
		"document_id", doc.ID, "extraction_id", extractionID,
		"document_type", result.DocumentType, "valid", result.Validation.DocumentValid)
	return s.extractions.GetByID(ctx, extractionID)
}

// GetDocument returns a document with its latest extraction, which may be
// nil when the document has never been processed.
func (s *Service) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, *entity.Extraction, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ex, err := s.extractions.LatestByDocument(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return doc, nil, nil
		}
		return nil, nil, err
	}
	return doc, ex, nil
}

func (s *Service) ListDocuments(ctx context.Context, limit int) ([]*entity.Document, error) {
	return s.docs.List(ctx, limit)
}

// ApplyCorrection overrides one field in the stored result of the
// document's latest completed run. The manual value becomes authoritative
// at confidence 1.0; the stored validation report is left as the record
// of the automated pass.
func (s *Service) ApplyCorrection(ctx context.Context, documentID uuid.UUID, fieldKey string, value any) (*entity.Correction, *pipeline.DocumentResult, error) {
	validator := common.NewValidator()
	validator.Field("field_key", fieldKey, common.Required)
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	ex, err := s.extractions.LatestByDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if ex.Status != constants.DocStatusCompleted || len(ex.ResultJSON) == 0 {
		return nil, nil, common.NewAppError("NOT_CORRECTABLE", "latest extraction has no stored result", common.ErrInvalidInput)
	}

	var result pipeline.DocumentResult
	if err := json.Unmarshal(ex.ResultJSON, &result); err != nil {
		return nil, nil, common.NewAppError("DECODE_ERROR", "decode stored result", err)
	}

	corrected, audit := fields.ApplyCorrection(result.Fields, fieldKey, value)
	result.Fields = corrected
	raw, err := json.Marshal(&result)
	if err != nil {
		return nil, nil, common.NewAppError("ENCODE_ERROR", "encode corrected result", err)
	}

	row, err := s.corrections.Apply(ctx, ex.ID, audit, raw, corrected.Len())
	if err != nil {
		return nil, nil, err
	}
	return row, &result, nil
}

// ListCorrections returns the audit trail of the latest extraction.
func (s *Service) ListCorrections(ctx context.Context, documentID uuid.UUID) ([]*entity.Correction, error) {
	ex, err := s.extractions.LatestByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.corrections.ListByExtraction(ctx, ex.ID)
}
