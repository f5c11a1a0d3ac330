package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/fields"
)

type CorrectionRepository interface {
	// Apply stores the corrected result document and its audit row in one
	// transaction, so a crash never leaves a correction without its trace.
	Apply(ctx context.Context, extractionID uuid.UUID, corr fields.Correction, resultJSON json.RawMessage, fieldCount int) (*entity.Correction, error)
	ListByExtraction(ctx context.Context, extractionID uuid.UUID) ([]*entity.Correction, error)
}

type correctionRepo struct {
	db          *sql.DB
	extractions ExtractionRepository
	logger      *slog.Logger
}

func NewCorrectionRepository(db *sql.DB, extractions ExtractionRepository, logger *slog.Logger) CorrectionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &correctionRepo{db: db, extractions: extractions, logger: logger}
}

func (r *correctionRepo) Apply(ctx context.Context, extractionID uuid.UUID, corr fields.Correction, resultJSON json.RawMessage, fieldCount int) (*entity.Correction, error) {
	prev, err := json.Marshal(corr.PreviousValue)
	if err != nil {
		return nil, common.NewAppError("ENCODE_ERROR", "encode previous value", err)
	}
	next, err := json.Marshal(corr.NewValue)
	if err != nil {
		return nil, common.NewAppError("ENCODE_ERROR", "encode new value", err)
	}

	row := &entity.Correction{
		ID:            uuid.New(),
		ExtractionID:  extractionID,
		FieldKey:      corr.FieldKey,
		PreviousValue: prev,
		NewValue:      next,
		CorrectedAt:   corr.CorrectedAt,
	}
	if row.CorrectedAt.IsZero() {
		row.CorrectedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "begin correction tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.extractions.UpdateResultJSON(ctx, tx, extractionID, resultJSON, fieldCount); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO corrections (id, extraction_id, field_key, previous_value, new_value, corrected_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		row.ID.String(), row.ExtractionID.String(), row.FieldKey,
		string(row.PreviousValue), string(row.NewValue), fmtTime(row.CorrectedAt))
	if err != nil {
		r.logger.Error("corrections.insert_failed", "extraction_id", extractionID, "field_key", corr.FieldKey, "error", err)
		return nil, common.NewAppError("DB_ERROR", "insert correction", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "commit correction tx", err)
	}

	r.logger.Info("corrections.applied",
		"extraction_id", extractionID, "field_key", corr.FieldKey, "correction_id", row.ID)
	return row, nil
}

func (r *correctionRepo) ListByExtraction(ctx context.Context, extractionID uuid.UUID) ([]*entity.Correction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, extraction_id, field_key, previous_value, new_value, corrected_at
		 FROM corrections WHERE extraction_id = $1 ORDER BY corrected_at`, extractionID.String())
	if err != nil {
		r.logger.Error("corrections.list_failed", "extraction_id", extractionID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "list corrections", err)
	}
	defer rows.Close()

	var out []*entity.Correction
	for rows.Next() {
		var (
			id, exID, correctedAt string
			prev                  sql.NullString
			c                     entity.Correction
			next                  string
		)
		if err := rows.Scan(&id, &exID, &c.FieldKey, &prev, &next, &correctedAt); err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan correction row", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if c.ExtractionID, err = uuid.Parse(exID); err != nil {
			return nil, err
		}
		if prev.Valid {
			c.PreviousValue = json.RawMessage(prev.String)
		}
		c.NewValue = json.RawMessage(next)
		c.CorrectedAt = parseTime(correctedAt)
		out = append(out, &c)
	}
	return out, rows.Err()
}
