package fields

import (
	"strconv"
	"strings"
	"time"

	"github.com/documind/documind/constants"
)

// Correction is the audit record of one manual override.
type Correction struct {
	FieldKey      string    `json:"field_key"`
	PreviousValue any       `json:"previous_value,omitempty"`
	NewValue      any       `json:"new_value"`
	CorrectedAt   time.Time `json:"corrected_at"`
}

// ApplyCorrection retires every occurrence under the dotted path and
// installs a single manual field at confidence 1.0. Unknown paths create a
// new leaf at the root under the full path string. The input set is not
// modified; the corrected copy is returned with the audit record.
func ApplyCorrection(s *Set, path string, value any) (*Set, Correction) {
	corrected := s.Clone()
	prev, replaced := replaceAtPath(corrected, splitPath(path), value)
	if !replaced {
		corrected.PutLeaf(path, manualField(value, constants.FieldText))
	}
	return corrected, Correction{
		FieldKey:      path,
		PreviousValue: prev,
		NewValue:      value,
		CorrectedAt:   time.Now().UTC(),
	}
}

func replaceAtPath(s *Set, segs []string, value any) (prev any, replaced bool) {
	if s == nil || len(segs) == 0 {
		return nil, false
	}
	head := segs[0]
	n, ok := s.nodes[head]
	if !ok {
		return nil, false
	}
	if len(segs) == 1 {
		if n.kind != KindLeaf {
			return nil, false
		}
		ft := constants.FieldText
		if len(n.leaf) > 0 {
			prev = n.leaf[0].Value
			ft = n.leaf[0].Type
		}
		s.Put(head, Leaf(manualField(value, ft)))
		return prev, true
	}
	switch n.kind {
	case KindGroup:
		return replaceAtPath(n.group, segs[1:], value)
	case KindList:
		idx, err := strconv.Atoi(segs[1])
		if err != nil || idx < 0 || idx >= len(n.list) {
			return nil, false
		}
		return replaceAtPath(n.list[idx], segs[2:], value)
	default:
		return nil, false
	}
}

func manualField(value any, ft constants.FieldType) Field {
	if _, isNum := value.(float64); isNum && ft == constants.FieldText {
		ft = constants.FieldNumber
	}
	return Field{
		Value:      value,
		Type:       ft,
		Confidence: 1.0,
		Source:     constants.SourceManual,
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
