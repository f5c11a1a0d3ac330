// Package classify assigns a document type to raw OCR text using keyword
// scoring and a few length heuristics.
package classify

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/documind/documind/constants"
)

const (
	// Text shorter than this is treated as a compact document (receipt or
	// business card shaped).
	shortTextLen = 300
	// Text longer than this with several resume signals is almost
	// certainly a resume.
	longTextLen = 1000
)

// Indices into rules, in tie-break order.
const (
	idxInvoice = iota
	idxReceipt
	idxResume
	idxIDDocument
	idxBusinessCard
)

type rule struct {
	docType  constants.DocumentType
	patterns []*regexp.Regexp
	signals  []string
}

var signalCleaner = strings.NewReplacer(`\b`, "", `\`, "")

// rules is ordered; earlier entries win score ties.
var rules = buildRules()

func buildRules() []rule {
	specs := []struct {
		docType constants.DocumentType
		raw     []string
	}{
		{constants.Invoice, []string{
			`\binvoice\b`, `\bbill to\b`, `\bdue date\b`, `\bbalance due\b`,
			`\bsubtotal\b`, `\btax rate\b`, `\binvoice no\b`, `\binvoice number\b`,
			`\bgrand total\b`, `\bpayment terms\b`, `\bpayment due\b`,
		}},
		{constants.Receipt, []string{
			`\breceipt\b`, `\btransaction\b`, `\bthank you\b`, `\bcashier\b`,
			`\bchange\b`, `\btotal amount\b`, `\bcard type\b`, `\bauth code\b`,
			`\btax invoice\b`, `\bpos\b`,
		}},
		{constants.Resume, []string{
			`\bresume\b`, `\bcurriculum vitae\b`, `\bcv\b`, `\bexperience\b`,
			`\beducation\b`, `\bskills\b`, `\bwork history\b`, `\bprojects\b`,
			`\blanguages\b`, `\bcertifications\b`, `\bachievements\b`,
		}},
		{constants.IDDocument, []string{
			`\bpassport\b`, `\bdriver license\b`, `\bdriving licence\b`, `\bidentity card\b`,
			`\bdate of birth\b`, `\bdob\b`, `\bnationality\b`, `\bsex\b`, `\bgender\b`,
			`\bissued on\b`, `\bexpiry date\b`,
		}},
		{constants.BusinessCard, []string{
			`\btel\b`, `\bmobile\b`, `\bphone\b`, `\bemail\b`, `\bwebsite\b`,
			`\bwww\b`, `\bfax\b`, `\bco\.`, `\bltd\.`, `\binc\.`,
		}},
	}

	out := make([]rule, 0, len(specs))
	for _, s := range specs {
		r := rule{docType: s.docType}
		for _, raw := range s.raw {
			r.patterns = append(r.patterns, regexp.MustCompile(raw))
			r.signals = append(r.signals, signalCleaner.Replace(raw))
		}
		out = append(out, r)
	}
	return out
}

// Result is the classifier verdict for one document.
type Result struct {
	DocumentType   constants.DocumentType `json:"document_type"`
	Confidence     float64                `json:"confidence"`
	MatchedSignals []string               `json:"matched_signals"`
}

// Classifier scores text against the keyword rules. It holds no per-document
// state and is safe for concurrent use.
type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify scores the text and returns the winning type. A zero best score
// yields the Unknown sentinel at confidence 0.
func (c *Classifier) Classify(text string) Result {
	if text == "" {
		c.logger.Warn("classify.empty_text")
		return Result{DocumentType: constants.Unknown, Confidence: 0.0, MatchedSignals: []string{}}
	}

	lower := strings.ToLower(text)
	scores := make([]float64, len(rules))
	matched := make([][]string, len(rules))
	for i, r := range rules {
		for j, p := range r.patterns {
			if p.MatchString(lower) {
				scores[i]++
				matched[i] = append(matched[i], r.signals[j])
			}
		}
	}

	// Length heuristics. Compact documents lean receipt or business card,
	// long keyword-dense ones lean resume.
	n := len(text)
	if n < shortTextLen {
		if scores[idxBusinessCard] > 0 {
			scores[idxBusinessCard]++
		}
		if scores[idxReceipt] > 0 {
			scores[idxReceipt] += 0.5
		}
	}
	if n > longTextLen && scores[idxResume] > 2 {
		scores[idxResume] += 2
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	if scores[best] == 0 {
		c.logger.Info("classify.done", "document_type", constants.Unknown, "confidence", 0.0)
		return Result{DocumentType: constants.Unknown, Confidence: 0.0, MatchedSignals: []string{}}
	}

	confidence := math.Min(scores[best]/4.0, 1.0)
	c.logger.Info("classify.done",
		"document_type", rules[best].docType,
		"confidence", confidence,
		"signals", len(matched[best]))
	return Result{
		DocumentType:   rules[best].docType,
		Confidence:     confidence,
		MatchedSignals: matched[best],
	}
}
