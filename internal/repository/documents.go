package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) (*entity.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	GetByHash(ctx context.Context, hash string) (*entity.Document, error)
	// UpsertByHash returns the existing row when the content hash is
	// already known; the bool reports deduplication.
	UpsertByHash(ctx context.Context, doc *entity.Document) (*entity.Document, bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocStatus) error
	MarkProcessed(ctx context.Context, id uuid.UUID, status constants.DocStatus, processedAt time.Time) error
	List(ctx context.Context, limit int) ([]*entity.Document, error)
}

type documentRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewDocumentRepository(db *sql.DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger}
}

const documentColumns = `id, source_path, filename, file_ext, file_size, content_hash, status, uploaded_at, processed_at`

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	out := *doc
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.UploadedAt.IsZero() {
		out.UploadedAt = time.Now().UTC()
	}
	if out.Status == "" {
		out.Status = constants.DocStatusQueued
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		out.ID.String(), out.SourcePath, out.Filename, out.FileExt, out.FileSize,
		out.ContentHash, string(out.Status), fmtTime(out.UploadedAt), nullTimeArg(out.ProcessedAt),
	)
	if err != nil {
		r.logger.Error("documents.create_failed", "filename", out.Filename, "error", err)
		return nil, common.NewAppError("DB_ERROR", "create document", err)
	}
	r.logger.Info("documents.created", "document_id", out.ID, "filename", out.Filename, "ext", out.FileExt)
	return &out, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id.String())
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("DOCUMENT_NOT_FOUND", "document not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("documents.get_failed", "document_id", id, "error", err)
		return nil, common.NewAppError("DB_ERROR", "get document", err)
	}
	return doc, nil
}

func (r *documentRepo) GetByHash(ctx context.Context, hash string) (*entity.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE content_hash = $1`, hash)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("DOCUMENT_NOT_FOUND", "document not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("documents.get_by_hash_failed", "error", err)
		return nil, common.NewAppError("DB_ERROR", "get document by hash", err)
	}
	return doc, nil
}

func (r *documentRepo) UpsertByHash(ctx context.Context, doc *entity.Document) (*entity.Document, bool, error) {
	if existing, err := r.GetByHash(ctx, doc.ContentHash); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	created, err := r.Create(ctx, doc)
	if err != nil {
		return nil, false, err
	}
	return created, false, nil
}

func (r *documentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = $1 WHERE id = $2`, string(status), id.String())
	if err != nil {
		r.logger.Error("documents.update_status_failed", "document_id", id, "status", status, "error", err)
		return common.NewAppError("DB_ERROR", "update document status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError("DOCUMENT_NOT_FOUND", "document not found", common.ErrNotFound)
	}
	r.logger.Debug("documents.status_updated", "document_id", id, "status", status)
	return nil
}

func (r *documentRepo) MarkProcessed(ctx context.Context, id uuid.UUID, status constants.DocStatus, processedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = $1, processed_at = $2 WHERE id = $3`,
		string(status), fmtTime(processedAt), id.String())
	if err != nil {
		r.logger.Error("documents.mark_processed_failed", "document_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "mark document processed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError("DOCUMENT_NOT_FOUND", "document not found", common.ErrNotFound)
	}
	return nil
}

func (r *documentRepo) List(ctx context.Context, limit int) ([]*entity.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at DESC LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("documents.list_failed", "error", err)
		return nil, common.NewAppError("DB_ERROR", "list documents", err)
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan document row", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		id, status, uploadedAt string
		processedAt            sql.NullString
		doc                    entity.Document
	)
	err := row.Scan(&id, &doc.SourcePath, &doc.Filename, &doc.FileExt, &doc.FileSize,
		&doc.ContentHash, &status, &uploadedAt, &processedAt)
	if err != nil {
		return nil, err
	}
	doc.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	doc.Status = constants.DocStatus(status)
	doc.UploadedAt = parseTime(uploadedAt)
	doc.ProcessedAt = parseTimePtr(processedAt)
	return &doc, nil
}

func nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}
