package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Correction is the stored audit row for one manual field override.
// Values are kept as JSON so numbers and strings round-trip unchanged.
type Correction struct {
	ID            uuid.UUID       `json:"id"`
	ExtractionID  uuid.UUID       `json:"extraction_id"`
	FieldKey      string          `json:"field_key"`
	PreviousValue json.RawMessage `json:"previous_value,omitempty"`
	NewValue      json.RawMessage `json:"new_value"`
	CorrectedAt   time.Time       `json:"corrected_at"`
}
