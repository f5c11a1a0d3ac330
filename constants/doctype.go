package constants

import (
	"strings"
)

type DocumentType string

const (
	Invoice      DocumentType = "Invoice"
	Receipt      DocumentType = "Receipt"
	Resume       DocumentType = "Resume"
	IDDocument   DocumentType = "ID Document"
	BusinessCard DocumentType = "Business Card"
	Unknown      DocumentType = "Unknown"
)

// ClassifiableTypes is the fixed scoring order for the classifier.
// Ties are broken by position in this slice, so the order is part of the
// engine's observable behavior and must stay stable.
var ClassifiableTypes = []DocumentType{
	Invoice,
	Receipt,
	Resume,
	IDDocument,
	BusinessCard,
}

func AllTypesAsStrings() []string {
	result := make([]string, 0, len(ClassifiableTypes)+1)
	for _, dt := range ClassifiableTypes {
		result = append(result, string(dt))
	}
	return append(result, string(Unknown))
}

func CanonicalizeType(input string) (DocumentType, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]DocumentType{
		"bill":       Invoice,
		"cv":         Resume,
		"curriculum": Resume,
		"id":         IDDocument,
		"identity":   IDDocument,
		"card":       BusinessCard,
		"sales slip": Receipt,
		"register":   Receipt,
	}

	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range ClassifiableTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}

	return Unknown, false
}
