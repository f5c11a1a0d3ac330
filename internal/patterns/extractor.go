// Package patterns extracts universal field classes (emails, phones, dates,
// amounts, identifiers, URLs) from raw text with compiled regular
// expressions. Extraction is stateless and safe for concurrent use.
package patterns

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
)

var (
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	// US and international phone approximation; candidates still need >= 7 digits.
	rePhone = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}(?:\s*(?:ext|x)\s*\d+)?`)
	// Numeric dates (1/5/2023, 2023-01-05, 15/11/2023) and month-name forms
	// in either order (Jan 5, 2023 / 5 January 2023).
	reDate = regexp.MustCompile(`(?i)\b(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[\s.,-]+\d{1,2}[\s.,-]+\d{4}|\d{1,2}[\s.,-]+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[\s.,-]+\d{4})\b`)
	// Optional currency marker, then digits with thousands separators.
	reAmount = regexp.MustCompile(`(?:[\$₹€£]|USD|INR|EUR)?\s?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\b`)
	// Identifiers need a labeling keyword and a delimiter on the same line,
	// then a token of at least 4 characters.
	reIdentifier = regexp.MustCompile(`(?i)\b(?:invoice|inv|bill|reference|receipt|rcpt|trans|transaction|order)\b[ \t]*(?:no|number)?[ \t]*[:#.]+[ \t]*([A-Za-z0-9/-]{4,})`)
	reURL        = regexp.MustCompile(`(?i)https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+`)
	reHasDigit   = regexp.MustCompile(`\d`)
)

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Emails returns every email address in document order.
func (e *Extractor) Emails(text string) []fields.Field {
	results := make([]fields.Field, 0)
	for _, loc := range reEmail.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		results = append(results, fields.NewSpanned(raw, constants.FieldEmail, 1.0, constants.SourcePattern, loc[0], loc[1], raw))
	}
	return results
}

// PhoneNumbers returns phone candidates carrying at least 7 digits.
func (e *Extractor) PhoneNumbers(text string) []fields.Field {
	results := make([]fields.Field, 0)
	for _, loc := range rePhone.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if digitCount(raw) < 7 {
			continue
		}
		results = append(results, fields.NewSpanned(strings.TrimSpace(raw), constants.FieldPhone, 0.85, constants.SourcePattern, loc[0], loc[1], raw))
	}
	return results
}

// Dates returns dates normalized to ISO YYYY-MM-DD. Candidates the parser
// rejects are dropped silently.
func (e *Extractor) Dates(text string) []fields.Field {
	results := make([]fields.Field, 0)
	for _, loc := range reDate.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		parsed, err := dateparse.ParseAny(raw)
		if err != nil {
			e.logger.Warn("patterns.date_unparsed", "candidate", raw)
			continue
		}
		iso := parsed.Format("2006-01-02")
		results = append(results, fields.NewSpanned(iso, constants.FieldDate, 0.90, constants.SourcePattern, loc[0], loc[1], raw))
	}
	return results
}

// Amounts returns monetary values as comma-stripped floats. Bare integers
// are penalized and year-like integers are strongly penalized, since both
// shapes frequently belong to identifiers or dates instead of money.
func (e *Extractor) Amounts(text string) []fields.Field {
	results := make([]fields.Field, 0)
	for _, m := range reAmount.FindAllStringSubmatchIndex(text, -1) {
		if m[2] < 0 {
			continue
		}
		numStr := text[m[2]:m[3]]
		raw := text[m[0]:m[1]]
		value, err := strconv.ParseFloat(strings.ReplaceAll(numStr, ",", ""), 64)
		if err != nil {
			continue
		}
		confidence := 0.9
		if value > 1900 && value < 2100 && !strings.Contains(numStr, ".") {
			confidence = 0.5
		}
		if !strings.Contains(numStr, ".") {
			confidence -= 0.1
		}
		results = append(results, fields.NewSpanned(value, constants.FieldCurrency, confidence, constants.SourcePattern, m[0], m[1], raw))
	}
	return results
}

// Identifiers returns labeled reference numbers (invoice, receipt, order).
// The token must carry at least one digit.
func (e *Extractor) Identifiers(text string) []fields.Field {
	results := make([]fields.Field, 0)
	for _, m := range reIdentifier.FindAllStringSubmatchIndex(text, -1) {
		token := strings.TrimSpace(text[m[2]:m[3]])
		if !reHasDigit.MatchString(token) {
			continue
		}
		raw := text[m[0]:m[1]]
		results = append(results, fields.NewSpanned(token, constants.FieldInvoiceNumber, 0.85, constants.SourcePattern, m[0], m[1], raw))
	}
	return results
}

// URLs returns http and https links.
func (e *Extractor) URLs(text string) []fields.Field {
	results := make([]fields.Field, 0)
	for _, loc := range reURL.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		results = append(results, fields.NewSpanned(raw, constants.FieldURL, 0.95, constants.SourcePattern, loc[0], loc[1], raw))
	}
	return results
}

// All runs every pattern class and returns the results keyed by field name.
func (e *Extractor) All(text string) map[string][]fields.Field {
	return map[string][]fields.Field{
		"email":          e.Emails(text),
		"phone_number":   e.PhoneNumbers(text),
		"date":           e.Dates(text),
		"amount":         e.Amounts(text),
		"invoice_number": e.Identifiers(text),
		"url":            e.URLs(text),
	}
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
