package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/constants"
)

// Extraction is one pipeline run over a document. A document keeps every
// run; the latest COMPLETED one carries the authoritative result.
type Extraction struct {
	ID                       uuid.UUID           `json:"id"`
	DocumentID               uuid.UUID           `json:"document_id"`
	Status                   constants.DocStatus `json:"status"`
	OCRText                  string              `json:"ocr_text,omitempty"`
	OCRConfidence            float64             `json:"ocr_confidence,omitempty"`
	OCRMethod                string              `json:"ocr_method,omitempty"`
	DocumentType             string              `json:"document_type,omitempty"`
	ClassificationConfidence float64             `json:"classification_confidence,omitempty"`
	ResultJSON               json.RawMessage     `json:"result,omitempty"`
	FieldCount               int                 `json:"field_count"`
	DocumentValid            bool                `json:"document_valid"`
	ErrorMessage             string              `json:"error_message,omitempty"`
	StartedAt                time.Time           `json:"started_at"`
	FinishedAt               *time.Time          `json:"finished_at,omitempty"`
}
