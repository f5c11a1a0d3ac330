// Package entity holds the data-transfer structs shared between the
// repository, service, and server layers.
package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/constants"
)

// Document represents one ingested document file (or raw text submission).
type Document struct {
	ID          uuid.UUID           `json:"id"`
	SourcePath  string              `json:"source_path,omitempty"`
	Filename    string              `json:"filename"`
	FileExt     string              `json:"file_ext"`
	FileSize    int64               `json:"file_size"`
	ContentHash string              `json:"content_hash"`
	Status      constants.DocStatus `json:"status"`
	UploadedAt  time.Time           `json:"uploaded_at"`
	ProcessedAt *time.Time          `json:"processed_at,omitempty"`
}
