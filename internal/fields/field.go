package fields

import (
	"fmt"
	"strconv"

	"github.com/documind/documind/constants"
)

// Span is a half-open [Start, End) byte-offset interval into the input text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two half-open intervals share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Field is a single extracted value with its provenance. Values are strings,
// float64s or ints. A Field is never mutated after construction; merge,
// auto-correction and manual correction all install replacement copies.
type Field struct {
	Value         any                   `json:"value"`
	Type          constants.FieldType   `json:"field_type"`
	Confidence    float64               `json:"confidence"`
	Source        constants.FieldSource `json:"source"`
	Span          *Span                 `json:"span,omitempty"`
	OriginalText  string                `json:"original_text,omitempty"`
	Corrected     bool                  `json:"corrected,omitempty"`
	OriginalValue any                   `json:"original_value,omitempty"`
}

// New builds a field without a span.
func New(value any, ft constants.FieldType, confidence float64, source constants.FieldSource) Field {
	return Field{
		Value:      value,
		Type:       ft,
		Confidence: confidence,
		Source:     source,
	}
}

// NewSpanned builds a field anchored to its location in the input text.
func NewSpanned(value any, ft constants.FieldType, confidence float64, source constants.FieldSource, start, end int, original string) Field {
	return Field{
		Value:        value,
		Type:         ft,
		Confidence:   confidence,
		Source:       source,
		Span:         &Span{Start: start, End: end},
		OriginalText: original,
	}
}

// WithConfidence returns a copy of the field carrying a new confidence.
func (f Field) WithConfidence(c float64) Field {
	f.Confidence = c
	return f
}

// CorrectedTo returns a copy carrying the corrected value, with the prior
// value preserved and the corrected flag set.
func (f Field) CorrectedTo(value any) Field {
	f.OriginalValue = f.Value
	f.Value = value
	f.Corrected = true
	return f
}

// ValueString renders the field value for comparison and display. Floats
// render without trailing zeros so 100.0 and 100 compare equal.
func (f Field) ValueString() string {
	return ValueString(f.Value)
}

// ValueFloat returns the value as a float64 when it is numeric.
func (f Field) ValueFloat() (float64, bool) {
	switch v := f.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// ValueString renders an arbitrary field value as text.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
