// Package ner wraps the external named-entity-recognition collaborator and
// derives higher-level queries (person names, company buckets, addresses,
// skills, job titles) from its raw mentions. The package never runs model
// inference itself; when the collaborator is absent or failing every query
// degrades to an empty result.
package ner

import (
	"context"
)

// Category is a raw entity class produced by the collaborator.
type Category string

const (
	CategoryPerson Category = "PERSON"
	CategoryOrg    Category = "ORG"
	CategoryGPE    Category = "GPE"
	CategoryDate   Category = "DATE"
	CategoryMoney  Category = "MONEY"
)

// Categories lists every class the adapter consumes, in a stable order.
var Categories = []Category{CategoryPerson, CategoryOrg, CategoryGPE, CategoryDate, CategoryMoney}

// Mention is one recognized span in the input text, [Start, End) in bytes.
type Mention struct {
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Recognizer is the external NER service contract.
type Recognizer interface {
	Entities(ctx context.Context, text string) (map[Category][]Mention, error)
}

// emptyEntities returns a fresh map carrying every category with no mentions.
func emptyEntities() map[Category][]Mention {
	out := make(map[Category][]Mention, len(Categories))
	for _, c := range Categories {
		out[c] = []Mention{}
	}
	return out
}
