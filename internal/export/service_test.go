package export_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/classify"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/export"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/pipeline"
	"github.com/documind/documind/internal/repository"
	"github.com/documind/documind/internal/validate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repository.Open(context.Background(), common.DatabaseConfig{
		Driver:           "sqlite",
		DSN:              "file:" + filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:     1,
		MigrateOnStartup: true,
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, testLogger()) })
	return db
}

func marshalResult(t *testing.T, result *pipeline.DocumentResult) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	return raw
}

// seedRun registers a document and one completed extraction carrying the
// given result document.
func seedRun(t *testing.T, docs repository.DocumentRepository, exs repository.ExtractionRepository,
	filename, hash string, result *pipeline.DocumentResult, conf float64) {
	t.Helper()
	doc, err := docs.Create(context.Background(), &entity.Document{
		Filename:    filename,
		FileExt:     "png",
		ContentHash: hash,
	})
	require.NoError(t, err)
	ex, err := exs.Start(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NoError(t, exs.FinishSuccess(context.Background(), ex.ID, repository.FinishParams{
		DocumentType:             string(result.DocumentType),
		ClassificationConfidence: conf,
		ResultJSON:               marshalResult(t, result),
		FieldCount:               result.Fields.Len(),
		DocumentValid:            result.Validation.DocumentValid,
	}))
}

func invoiceResult() *pipeline.DocumentResult {
	tree := fields.NewSet()
	tree.PutLeaf("invoice_number", fields.New("INV-2023-1001", constants.FieldInvoiceNumber, 0.9, constants.SourcePattern))
	totals := fields.NewSet()
	totals.PutLeaf("total_amount", fields.New("48.7l", constants.FieldCurrency, 0.8, constants.SourcePattern).CorrectedTo(48.71))
	tree.Put("totals", fields.Group(totals))

	return &pipeline.DocumentResult{
		DocumentType:   constants.Invoice,
		Classification: classify.Result{DocumentType: constants.Invoice, Confidence: 1.0, MatchedSignals: []string{"invoice"}},
		Fields:         tree,
		Validation: validate.Report{
			DocumentValid:    true,
			FieldValidations: map[string]bool{"total_amount": true},
			LogicErrors:      []string{},
		},
		Status: pipeline.StatusSuccess,
	}
}

func mismatchedResult() *pipeline.DocumentResult {
	return &pipeline.DocumentResult{
		DocumentType:   constants.Invoice,
		Classification: classify.Result{DocumentType: constants.Invoice, Confidence: 0.5},
		Fields:         fields.NewSet(),
		Validation: validate.Report{
			DocumentValid:    false,
			FieldValidations: map[string]bool{"total_amount": true},
			LogicErrors:      []string{"Total mismatch: Calculated 105.00 != Extracted 115.00"},
		},
		Status: pipeline.StatusSuccess,
	}
}

func TestExportResultsXLSX(t *testing.T) {
	db := openTestDB(t)
	docs := repository.NewDocumentRepository(db, testLogger())
	exs := repository.NewExtractionRepository(db, testLogger())

	seedRun(t, docs, exs, "invoice-scan.png", "h1", invoiceResult(), 1.0)
	time.Sleep(time.Millisecond)
	seedRun(t, docs, exs, "smudged.png", "h2", mismatchedResult(), 0.5)

	// an unfinished run stays out of the export
	pending, err := docs.Create(context.Background(), &entity.Document{Filename: "pending.png", FileExt: "png", ContentHash: "h3"})
	require.NoError(t, err)
	_, err = exs.Start(context.Background(), pending.ID)
	require.NoError(t, err)

	svc := export.NewService(exs, docs, testLogger())
	raw, err := svc.ExportResultsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Documents", "Fields"}, wb.GetSheetList(), "scaffold sheet is dropped")

	rows, err := wb.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per completed run")
	assert.Equal(t, []string{
		"Processed At", "Filename", "Document Type", "Classification Confidence",
		"Fields", "Valid", "Logic Errors",
	}, rows[0])

	cell := func(sheet, ref string) string {
		v, err := wb.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.NotEmpty(t, cell("Documents", "A2"))
	assert.Equal(t, "invoice-scan.png", cell("Documents", "B2"))
	assert.Equal(t, "Invoice", cell("Documents", "C2"))
	assert.Equal(t, "1", cell("Documents", "D2"))
	assert.Equal(t, "2", cell("Documents", "E2"))
	assert.Equal(t, "TRUE", cell("Documents", "F2"))
	assert.Empty(t, cell("Documents", "G2"))

	assert.Equal(t, "smudged.png", cell("Documents", "B3"))
	assert.Equal(t, "FALSE", cell("Documents", "F3"))
	assert.Equal(t, "Total mismatch: Calculated 105.00 != Extracted 115.00", cell("Documents", "G3"))

	fieldRows, err := wb.GetRows("Fields")
	require.NoError(t, err)
	require.Len(t, fieldRows, 3, "only the invoice tree has leaves")

	assert.Equal(t, "invoice-scan.png", cell("Fields", "A2"))
	assert.Equal(t, "invoice_number", cell("Fields", "B2"))
	assert.Equal(t, "INV-2023-1001", cell("Fields", "C2"))
	assert.Equal(t, "0.9", cell("Fields", "E2"))
	assert.Equal(t, "pattern", cell("Fields", "F2"))
	assert.Equal(t, "FALSE", cell("Fields", "G2"))

	assert.Equal(t, "totals.total_amount", cell("Fields", "B3"))
	assert.Equal(t, "48.71", cell("Fields", "C3"), "the corrected value is exported")
	assert.Equal(t, "currency", cell("Fields", "D3"))
	assert.Equal(t, "TRUE", cell("Fields", "G3"))
}

func TestExportHonorsDateWindow(t *testing.T) {
	db := openTestDB(t)
	docs := repository.NewDocumentRepository(db, testLogger())
	exs := repository.NewExtractionRepository(db, testLogger())
	seedRun(t, docs, exs, "invoice-scan.png", "h1", invoiceResult(), 1.0)

	svc := export.NewService(exs, docs, testLogger())

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	raw, err := svc.ExportResultsXLSX(context.Background(), &tomorrow, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Documents")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "nothing ran tomorrow")
}

func TestExportEmptyStore(t *testing.T) {
	db := openTestDB(t)
	docs := repository.NewDocumentRepository(db, testLogger())
	exs := repository.NewExtractionRepository(db, testLogger())

	svc := export.NewService(exs, docs, testLogger())
	raw, err := svc.ExportResultsXLSX(context.Background(), nil, nil)

	require.NoError(t, err)
	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Documents", "Fields"}, wb.GetSheetList())
}
