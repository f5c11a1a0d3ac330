// Package extract holds the type-specific extractors. Each one composes the
// pattern extractor and the entity adapter into a shaped field tree; it
// never runs new pattern matching outside its own declared sub-extractions.
package extract

import (
	"context"
	"log/slog"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/heuristics"
	"github.com/documind/documind/internal/merge"
	"github.com/documind/documind/internal/ner"
	"github.com/documind/documind/internal/patterns"
)

// DocExtractor is the routing target for one document type: classified
// text in, field tree out. Extraction misses are absent keys or empty
// leaves, never errors.
type DocExtractor interface {
	Extract(ctx context.Context, text string) (*Result, error)
	Type() constants.DocumentType
}

// Result is one extraction pass. Findings are consistency problems noticed
// during extraction; they flow into the validation report downstream.
type Result struct {
	Type     constants.DocumentType
	Fields   *fields.Set
	Findings []string
}

func emptyResult(t constants.DocumentType) *Result {
	return &Result{Type: t, Fields: fields.NewSet(), Findings: []string{}}
}

// Deps bundles the collaborators the extractors share. Zero members are
// replaced with working defaults.
type Deps struct {
	Patterns *patterns.Extractor
	Entities *ner.Adapter
	Merger   *merge.Engine
	Params   heuristics.Params
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Params == (heuristics.Params{}) {
		d.Params = heuristics.Defaults()
	}
	if d.Patterns == nil {
		d.Patterns = patterns.NewExtractor(d.Logger)
	}
	if d.Entities == nil {
		d.Entities = ner.NewAdapter(ner.Config{Params: d.Params, Logger: d.Logger})
	}
	if d.Merger == nil {
		d.Merger = merge.NewEngine(d.Params, d.Logger)
	}
	return d
}

// firstOrNothing narrows a field list to its first occurrence.
func firstOrNothing(ff []fields.Field) (fields.Field, bool) {
	if len(ff) == 0 {
		return fields.Field{}, false
	}
	return ff[0], true
}
