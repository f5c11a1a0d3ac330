package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/repository"
)

func seedExtraction(t *testing.T, docs repository.DocumentRepository, exRepo repository.ExtractionRepository) *entity.Extraction {
	t.Helper()
	doc := seedDocument(t, docs, "abc123")
	ex, err := exRepo.Start(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NoError(t, exRepo.FinishSuccess(context.Background(), ex.ID, repository.FinishParams{
		DocumentType: string(constants.Invoice),
		ResultJSON:   json.RawMessage(`{"fields":{"total_amount":48.71}}`),
		FieldCount:   1,
	}))
	return ex
}

func TestApplyCorrectionPersistsRowAndResult(t *testing.T) {
	db := openTestDB(t)
	docs := repository.NewDocumentRepository(db, testLogger())
	exRepo := repository.NewExtractionRepository(db, testLogger())
	repo := repository.NewCorrectionRepository(db, exRepo, testLogger())
	ex := seedExtraction(t, docs, exRepo)

	at := time.Date(2023, time.November, 16, 10, 0, 0, 0, time.UTC)
	updated := json.RawMessage(`{"fields":{"total_amount":49.99}}`)
	row, err := repo.Apply(context.Background(), ex.ID, fields.Correction{
		FieldKey:      "total_amount",
		PreviousValue: 48.71,
		NewValue:      49.99,
		CorrectedAt:   at,
	}, updated, 1)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Equal(t, ex.ID, row.ExtractionID)
	assert.Equal(t, "total_amount", row.FieldKey)
	assert.JSONEq(t, `48.71`, string(row.PreviousValue))
	assert.JSONEq(t, `49.99`, string(row.NewValue))
	assert.WithinDuration(t, at, row.CorrectedAt, 0)

	got, err := exRepo.GetByID(context.Background(), ex.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(updated), string(got.ResultJSON), "stored result follows the correction")
}

func TestApplyCorrectionFillsTimestamp(t *testing.T) {
	db := openTestDB(t)
	docs := repository.NewDocumentRepository(db, testLogger())
	exRepo := repository.NewExtractionRepository(db, testLogger())
	repo := repository.NewCorrectionRepository(db, exRepo, testLogger())
	ex := seedExtraction(t, docs, exRepo)

	row, err := repo.Apply(context.Background(), ex.ID, fields.Correction{
		FieldKey: "vendor.name",
		NewValue: "ACME Corp",
	}, json.RawMessage(`{}`), 1)

	require.NoError(t, err)
	assert.False(t, row.CorrectedAt.IsZero())
	assert.JSONEq(t, `null`, string(row.PreviousValue), "no prior value recorded as null")
}

func TestListByExtractionOrdersByTime(t *testing.T) {
	db := openTestDB(t)
	docs := repository.NewDocumentRepository(db, testLogger())
	exRepo := repository.NewExtractionRepository(db, testLogger())
	repo := repository.NewCorrectionRepository(db, exRepo, testLogger())
	ex := seedExtraction(t, docs, exRepo)

	base := time.Date(2023, time.November, 16, 10, 0, 0, 0, time.UTC)
	for i, key := range []string{"total_amount", "vendor.name"} {
		_, err := repo.Apply(context.Background(), ex.ID, fields.Correction{
			FieldKey:    key,
			NewValue:    "v",
			CorrectedAt: base.Add(time.Duration(i) * time.Minute),
		}, json.RawMessage(`{}`), 1)
		require.NoError(t, err)
	}

	rows, err := repo.ListByExtraction(context.Background(), ex.ID)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "total_amount", rows[0].FieldKey)
	assert.Equal(t, "vendor.name", rows[1].FieldKey)
	assert.JSONEq(t, `"v"`, string(rows[0].NewValue))

	empty, err := repo.ListByExtraction(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
