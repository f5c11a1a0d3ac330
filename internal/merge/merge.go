// Package merge fuses pattern-sourced and entity-sourced findings for a
// field key into a single deduplicated list.
package merge

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/heuristics"
)

// DefaultPriorities names the primary source per field key. Objectively
// shaped fields trust the pattern extractor; semantically shaped fields
// trust the entity collaborator. Unlisted keys default to pattern.
var DefaultPriorities = map[string]constants.FieldSource{
	"email":          constants.SourcePattern,
	"phone_number":   constants.SourcePattern,
	"date":           constants.SourcePattern,
	"amount":         constants.SourcePattern,
	"invoice_number": constants.SourcePattern,
	"url":            constants.SourcePattern,
	"person_name":    constants.SourceEntity,
	"company_name":   constants.SourceEntity,
	"address":        constants.SourceEntity,
	"job_title":      constants.SourceEntity,
	"skill":          constants.SourceEntity,
}

// Engine applies the corroboration rules. Safe for concurrent use.
type Engine struct {
	params heuristics.Params
	logger *slog.Logger
}

func NewEngine(params heuristics.Params, logger *slog.Logger) *Engine {
	if params == (heuristics.Params{}) {
		params = heuristics.Defaults()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{params: params, logger: logger}
}

// Merge starts from the primary list unchanged and folds each secondary
// item in. A secondary item corroborates the best-matching primary item
// when their normalized values are similar enough or their spans overlap;
// corroboration keeps the primary value and reweights its confidence.
// Uncorroborated secondary items are appended as-is.
func (e *Engine) Merge(fieldKey string, primary, secondary []fields.Field) []fields.Field {
	merged := make([]fields.Field, len(primary))
	copy(merged, primary)

	for _, sec := range secondary {
		bestIdx := -1
		bestSim := -1.0
		for i, pri := range merged {
			sim := similarity(pri, sec)
			overlap := pri.Span != nil && sec.Span != nil && pri.Span.Overlaps(*sec.Span)
			if sim < e.params.SimilarityThreshold && !overlap {
				continue
			}
			if sim > bestSim {
				bestSim = sim
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			merged = append(merged, sec)
			continue
		}

		pri := merged[bestIdx]
		conf := e.params.PrimaryWeight*pri.Confidence + e.params.SecondaryWeight*sec.Confidence
		merged[bestIdx] = pri.WithConfidence(round4(math.Min(conf, 1.0)))
		e.logger.Debug("merge.corroborated",
			"field", fieldKey,
			"value", pri.ValueString(),
			"similarity", bestSim,
			"confidence", merged[bestIdx].Confidence)
	}
	return merged
}

// MergeAll merges two per-key maps, choosing the primary side per key from
// DefaultPriorities. Keys present on either side appear in the output, and
// every value slice is non-nil.
func (e *Engine) MergeAll(pattern, entity map[string][]fields.Field) map[string][]fields.Field {
	keys := make([]string, 0, len(pattern)+len(entity))
	seen := make(map[string]struct{})
	for k := range pattern {
		keys = append(keys, k)
		seen[k] = struct{}{}
	}
	for k := range entity {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make(map[string][]fields.Field, len(keys))
	for _, k := range keys {
		p := pattern[k]
		s := entity[k]
		if DefaultPriorities[k] == constants.SourceEntity {
			p, s = s, p
		}
		out[k] = e.Merge(k, p, s)
	}
	return out
}

func similarity(a, b fields.Field) float64 {
	return levenshtein.Similarity(strings.ToLower(a.ValueString()), strings.ToLower(b.ValueString()), nil) * 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
