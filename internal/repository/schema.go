package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Portable DDL: TEXT ids and timestamps, INTEGER bools. Statements are
// executed one at a time because pgx's extended protocol rejects
// multi-statement strings.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id           TEXT PRIMARY KEY,
		source_path  TEXT NOT NULL,
		filename     TEXT NOT NULL,
		file_ext     TEXT NOT NULL,
		file_size    INTEGER NOT NULL DEFAULT 0,
		content_hash TEXT NOT NULL,
		status       TEXT NOT NULL,
		uploaded_at  TEXT NOT NULL,
		processed_at TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_content_hash ON documents (content_hash)`,
	`CREATE TABLE IF NOT EXISTS extractions (
		id                        TEXT PRIMARY KEY,
		document_id               TEXT NOT NULL REFERENCES documents (id),
		status                    TEXT NOT NULL,
		ocr_text                  TEXT,
		ocr_confidence            DOUBLE PRECISION NOT NULL DEFAULT 0,
		ocr_method                TEXT,
		document_type             TEXT,
		classification_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		result_json               TEXT,
		field_count               INTEGER NOT NULL DEFAULT 0,
		document_valid            INTEGER NOT NULL DEFAULT 0,
		error_message             TEXT,
		started_at                TEXT NOT NULL,
		finished_at               TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_extractions_document ON extractions (document_id, started_at)`,
	`CREATE TABLE IF NOT EXISTS corrections (
		id             TEXT PRIMARY KEY,
		extraction_id  TEXT NOT NULL REFERENCES extractions (id),
		field_key      TEXT NOT NULL,
		previous_value TEXT,
		new_value      TEXT NOT NULL,
		corrected_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_corrections_extraction ON corrections (extraction_id)`,
}

// Migrate creates the schema when missing. Safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Timestamps are stored as fixed-width UTC TEXT. Zero-padded fractions
// keep string comparison and ORDER BY consistent with time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
