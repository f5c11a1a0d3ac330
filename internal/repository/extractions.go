package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
)

// FinishParams carries everything a successful pipeline run persists.
type FinishParams struct {
	DocumentType             string
	ClassificationConfidence float64
	ResultJSON               json.RawMessage
	FieldCount               int
	DocumentValid            bool
}

type ExtractionRepository interface {
	Start(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error)
	RecordOCR(ctx context.Context, id uuid.UUID, text string, confidence float64, method string) error
	FinishSuccess(ctx context.Context, id uuid.UUID, p FinishParams) error
	// FinishFailure stores the error and, when available, the failed
	// result document for debugging.
	FinishFailure(ctx context.Context, id uuid.UUID, message string, resultJSON json.RawMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Extraction, error)
	LatestByDocument(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error)
	ListCompleted(ctx context.Context, from, to *time.Time) ([]*entity.Extraction, error)
	// UpdateResultJSON replaces the stored result inside an open
	// transaction; the corrections repository drives it.
	UpdateResultJSON(ctx context.Context, tx *sql.Tx, id uuid.UUID, resultJSON json.RawMessage, fieldCount int) error
}

type extractionRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExtractionRepository(db *sql.DB, logger *slog.Logger) ExtractionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionRepo{db: db, logger: logger}
}

const extractionColumns = `id, document_id, status, ocr_text, ocr_confidence, ocr_method,
	document_type, classification_confidence, result_json, field_count, document_valid,
	error_message, started_at, finished_at`

func (r *extractionRepo) Start(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error) {
	ex := &entity.Extraction{
		ID:         uuid.New(),
		DocumentID: documentID,
		Status:     constants.DocStatusProcessing,
		StartedAt:  time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extractions (id, document_id, status, started_at) VALUES ($1, $2, $3, $4)`,
		ex.ID.String(), ex.DocumentID.String(), string(ex.Status), fmtTime(ex.StartedAt))
	if err != nil {
		r.logger.Error("extractions.start_failed", "document_id", documentID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "start extraction", err)
	}
	r.logger.Info("extractions.started", "extraction_id", ex.ID, "document_id", documentID)
	return ex, nil
}

func (r *extractionRepo) RecordOCR(ctx context.Context, id uuid.UUID, text string, confidence float64, method string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extractions SET ocr_text = $1, ocr_confidence = $2, ocr_method = $3 WHERE id = $4`,
		text, confidence, method, id.String())
	if err != nil {
		r.logger.Error("extractions.record_ocr_failed", "extraction_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "record ocr output", err)
	}
	r.logger.Debug("extractions.ocr_recorded", "extraction_id", id, "method", method, "confidence", confidence, "bytes", len(text))
	return nil
}

func (r *extractionRepo) FinishSuccess(ctx context.Context, id uuid.UUID, p FinishParams) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extractions SET status = $1, document_type = $2, classification_confidence = $3,
			result_json = $4, field_count = $5, document_valid = $6, finished_at = $7
		 WHERE id = $8`,
		string(constants.DocStatusCompleted), p.DocumentType, p.ClassificationConfidence,
		string(p.ResultJSON), p.FieldCount, boolToInt(p.DocumentValid), fmtTime(time.Now()), id.String())
	if err != nil {
		r.logger.Error("extractions.finish_failed", "extraction_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "finish extraction", err)
	}
	r.logger.Info("extractions.finished", "extraction_id", id,
		"document_type", p.DocumentType, "fields", p.FieldCount, "valid", p.DocumentValid)
	return nil
}

func (r *extractionRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string, resultJSON json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extractions SET status = $1, error_message = $2, result_json = $3, finished_at = $4 WHERE id = $5`,
		string(constants.DocStatusFailed), message, nullJSONArg(resultJSON), fmtTime(time.Now()), id.String())
	if err != nil {
		r.logger.Error("extractions.finish_failure_failed", "extraction_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "record extraction failure", err)
	}
	r.logger.Warn("extractions.failed", "extraction_id", id, "error", message)
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Extraction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+extractionColumns+` FROM extractions WHERE id = $1`, id.String())
	ex, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("EXTRACTION_NOT_FOUND", "extraction not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("extractions.get_failed", "extraction_id", id, "error", err)
		return nil, common.NewAppError("DB_ERROR", "get extraction", err)
	}
	return ex, nil
}

func (r *extractionRepo) LatestByDocument(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+extractionColumns+` FROM extractions WHERE document_id = $1
		 ORDER BY started_at DESC LIMIT 1`, documentID.String())
	ex, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("EXTRACTION_NOT_FOUND", "no extraction for document", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("extractions.latest_failed", "document_id", documentID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "get latest extraction", err)
	}
	return ex, nil
}

func (r *extractionRepo) ListCompleted(ctx context.Context, from, to *time.Time) ([]*entity.Extraction, error) {
	q := `SELECT ` + extractionColumns + ` FROM extractions WHERE status = $1`
	args := []any{string(constants.DocStatusCompleted)}
	if from != nil {
		args = append(args, fmtTime(*from))
		q += ` AND started_at >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, fmtTime(*to))
		q += ` AND started_at <= $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY started_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("extractions.list_completed_failed", "error", err)
		return nil, common.NewAppError("DB_ERROR", "list completed extractions", err)
	}
	defer rows.Close()

	var out []*entity.Extraction
	for rows.Next() {
		ex, err := scanExtraction(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan extraction row", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (r *extractionRepo) UpdateResultJSON(ctx context.Context, tx *sql.Tx, id uuid.UUID, resultJSON json.RawMessage, fieldCount int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE extractions SET result_json = $1, field_count = $2 WHERE id = $3`,
		string(resultJSON), fieldCount, id.String())
	if err != nil {
		r.logger.Error("extractions.update_result_failed", "extraction_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "update extraction result", err)
	}
	return nil
}

func scanExtraction(row rowScanner) (*entity.Extraction, error) {
	var (
		id, docID, status, startedAt              string
		ocrText, ocrMethod, docType, errMsg, resJ sql.NullString
		finishedAt                                sql.NullString
		valid                                     int
		ex                                        entity.Extraction
	)
	err := row.Scan(&id, &docID, &status, &ocrText, &ex.OCRConfidence, &ocrMethod,
		&docType, &ex.ClassificationConfidence, &resJ, &ex.FieldCount, &valid,
		&errMsg, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	if ex.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if ex.DocumentID, err = uuid.Parse(docID); err != nil {
		return nil, err
	}
	ex.Status = constants.DocStatus(status)
	ex.OCRText = ocrText.String
	ex.OCRMethod = ocrMethod.String
	ex.DocumentType = docType.String
	ex.ErrorMessage = errMsg.String
	if resJ.Valid && resJ.String != "" {
		ex.ResultJSON = json.RawMessage(resJ.String)
	}
	ex.DocumentValid = valid != 0
	ex.StartedAt = parseTime(startedAt)
	ex.FinishedAt = parseTimePtr(finishedAt)
	return &ex, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullJSONArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
