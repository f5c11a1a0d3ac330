package autocorrect

import (
	"strings"

	"github.com/documind/documind/internal/fields"
)

// amountKeyWords route a leaf to CorrectAmount by key name.
var amountKeyWords = []string{"amount", "total", "price", "cost", "tax", "subtotal"}

// Apply walks every leaf of the tree and repairs dates, amounts and phones
// selected by key name. Changed leaves are replaced by copies carrying the
// new value, the corrected flag and the prior value; confidence and source
// are preserved. The input tree is never modified. The second return is the
// number of corrected occurrences.
func (c *Corrector) Apply(tree *fields.Set) (*fields.Set, int) {
	corrected := 0
	out := tree.Transform(func(path, key string, f fields.Field) (fields.Field, bool) {
		lower := strings.ToLower(key)
		switch {
		case strings.Contains(lower, "date"):
			iso, ok := c.CorrectDate(f.ValueString())
			if ok && iso != f.ValueString() {
				corrected++
				return f.CorrectedTo(iso), true
			}
			// Dates normalized at extraction time still carry the raw
			// form in OriginalText; surface that as a correction.
			if f.OriginalText != "" && f.OriginalText != f.ValueString() && !f.Corrected {
				corrected++
				f.Corrected = true
				f.OriginalValue = f.OriginalText
				return f, true
			}
			return f, false

		case keyMentionsAmount(lower):
			v, ok := c.CorrectAmount(f.ValueString())
			if !ok || amountEqual(f.Value, v) {
				return f, false
			}
			corrected++
			return f.CorrectedTo(v), true

		case strings.Contains(lower, "phone"):
			e164, ok := c.CorrectPhone(f.ValueString(), "")
			if !ok || e164 == f.ValueString() {
				return f, false
			}
			corrected++
			return f.CorrectedTo(e164), true
		}
		return f, false
	})

	if corrected > 0 {
		c.logger.Info("autocorrect.applied", "corrected", corrected)
	}
	return out, corrected
}

func keyMentionsAmount(key string) bool {
	for _, w := range amountKeyWords {
		if strings.Contains(key, w) {
			return true
		}
	}
	return false
}

// amountEqual reports whether the parsed amount matches the stored value.
// String values never match: typing them as floats is itself a correction.
func amountEqual(old any, corrected float64) bool {
	switch v := old.(type) {
	case float64:
		return v == corrected
	case int:
		return float64(v) == corrected
	default:
		return false
	}
}
