// Package export renders stored extraction results as XLSX workbooks.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/pipeline"
	"github.com/documind/documind/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	extractions repository.ExtractionRepository
	docs        repository.DocumentRepository
	logger      *slog.Logger
}

func NewService(extractions repository.ExtractionRepository, docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extractions: extractions, docs: docs, logger: logger}
}

const (
	sheetDocuments = "Documents"
	sheetFields    = "Fields"
)

// ExportResultsXLSX returns a workbook covering completed extractions in
// the date window. If only from is provided -> from..today (inclusive).
// If only to is provided -> beginning..to. If neither -> everything.
func (s *Service) ExportResultsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC); widen "to" past the whole day.
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		toDate = &t
	}

	exs, err := s.extractions.ListCompleted(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	f := excelize.NewFile()
	if err := s.writeDocumentsSheet(ctx, f, exs); err != nil {
		return nil, err
	}
	if err := s.writeFieldsSheet(ctx, f, exs); err != nil {
		return nil, err
	}
	// drop the default sheet and activate the summary
	_ = f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheetDocuments); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(exs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeDocumentsSheet(ctx context.Context, f *excelize.File, exs []*entity.Extraction) error {
	if _, err := f.NewSheet(sheetDocuments); err != nil {
		return err
	}

	headers := []string{
		"Processed At",
		"Filename",
		"Document Type",
		"Classification Confidence",
		"Fields",
		"Valid",
		"Logic Errors",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetDocuments, cell, h)
	}

	row := 2
	for _, ex := range exs {
		filename := s.filenameFor(ctx, ex)
		result, ok := decodeResult(ex)

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetDocuments, cell, v)
		}

		if ex.FinishedAt != nil {
			write(1, ex.FinishedAt.UTC().Format("2006-01-02 15:04:05"))
		} else {
			write(1, "")
		}
		write(2, filename)
		write(3, ex.DocumentType)
		write(4, ex.ClassificationConfidence)
		write(5, ex.FieldCount)
		write(6, ex.DocumentValid)
		if ok && len(result.Validation.LogicErrors) > 0 {
			write(7, truncate(strings.Join(result.Validation.LogicErrors, "; "), 200))
		} else {
			write(7, "")
		}

		row++
	}

	_ = f.SetColWidth(sheetDocuments, "A", "A", 20) // timestamp
	_ = f.SetColWidth(sheetDocuments, "B", "B", 32) // filename
	_ = f.SetColWidth(sheetDocuments, "C", "C", 16) // type
	_ = f.SetColWidth(sheetDocuments, "D", "E", 12)
	_ = f.SetColWidth(sheetDocuments, "G", "G", 60) // logic errors
	return nil
}

func (s *Service) writeFieldsSheet(ctx context.Context, f *excelize.File, exs []*entity.Extraction) error {
	if _, err := f.NewSheet(sheetFields); err != nil {
		return err
	}

	headers := []string{
		"Filename",
		"Field",
		"Value",
		"Type",
		"Confidence",
		"Source",
		"Corrected",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetFields, cell, h)
	}

	row := 2
	for _, ex := range exs {
		result, ok := decodeResult(ex)
		if !ok || result.Fields == nil {
			continue
		}
		filename := s.filenameFor(ctx, ex)

		for _, ff := range result.Fields.Flatten() {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheetFields, cell, v)
			}
			write(1, filename)
			write(2, ff.Path)
			write(3, ff.Field.ValueString())
			write(4, string(ff.Field.Type))
			write(5, ff.Field.Confidence)
			write(6, string(ff.Field.Source))
			write(7, ff.Field.Corrected)
			row++
		}
	}

	_ = f.SetColWidth(sheetFields, "A", "A", 32) // filename
	_ = f.SetColWidth(sheetFields, "B", "B", 34) // dotted path
	_ = f.SetColWidth(sheetFields, "C", "C", 40) // value
	_ = f.SetColWidth(sheetFields, "D", "F", 14)
	return nil
}

// filenameFor resolves the owning document's filename, falling back to
// the document id when the row is gone.
func (s *Service) filenameFor(ctx context.Context, ex *entity.Extraction) string {
	doc, err := s.docs.GetByID(ctx, ex.DocumentID)
	if err != nil || doc == nil {
		return ex.DocumentID.String()
	}
	return doc.Filename
}

func decodeResult(ex *entity.Extraction) (*pipeline.DocumentResult, bool) {
	if len(ex.ResultJSON) == 0 {
		return nil, false
	}
	var result pipeline.DocumentResult
	if err := json.Unmarshal(ex.ResultJSON, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
