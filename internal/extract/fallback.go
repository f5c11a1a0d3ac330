package extract

import (
	"context"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
)

// fallbackKeys fixes the output layout of the flat field set.
var fallbackKeys = []string{
	"email", "phone_number", "date", "amount", "invoice_number", "url",
	"person_name", "company_name", "address", "job_title", "skill",
}

// FallbackExtractor handles documents without a dedicated extractor: the
// full pattern field set fused with the entity classes, flat, with no
// document-shape structuring.
type FallbackExtractor struct {
	deps Deps
}

func NewFallbackExtractor(deps Deps) *FallbackExtractor {
	return &FallbackExtractor{deps: deps.withDefaults()}
}

func (e *FallbackExtractor) Type() constants.DocumentType {
	return constants.Unknown
}

func (e *FallbackExtractor) Extract(ctx context.Context, text string) (*Result, error) {
	if text == "" {
		e.deps.Logger.Warn("extract.fallback.empty_text")
		return emptyResult(constants.Unknown), nil
	}

	pattern := e.deps.Patterns.All(text)

	vendors, customers := e.deps.Entities.Companies(ctx, text)
	entity := map[string][]fields.Field{
		"person_name":  e.deps.Entities.PersonNames(ctx, text),
		"company_name": append(vendors, customers...),
		"address":      e.deps.Entities.Addresses(text),
		"job_title":    e.deps.Entities.JobTitles(text),
		"skill":        e.deps.Entities.Skills(text),
	}

	merged := e.deps.Merger.MergeAll(pattern, entity)

	tree := fields.NewSet()
	total := 0
	for _, k := range fallbackKeys {
		tree.PutLeaf(k, merged[k]...)
		total += len(merged[k])
	}

	e.deps.Logger.Info("extract.fallback.done", "fields", total)
	return &Result{Type: constants.Unknown, Fields: tree, Findings: []string{}}, nil
}
