package ner

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/heuristics"
)

var (
	reZIP = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	// Role keyword, up to three trailing words, a connector, then a
	// capitalized phrase (the employer).
	reJobTitle = regexp.MustCompile(`(?i)\b((?:Software Engineer|Developer|Manager|Director|CTO|CEO|COO|Designer|Architect|Consultant|Analyst|Scientist|Coordinator|Administrator)(?:\s+[A-Za-z]+){0,3})\s+(?:at|@|for|-|with)\s+([A-Z][A-Za-z0-9\s]+)`)
)

// Config configures the adapter. A nil Recognizer means the collaborator is
// absent and every query degrades to empty results.
type Config struct {
	Recognizer Recognizer
	Skills     []string
	Params     heuristics.Params
	Logger     *slog.Logger
}

// Adapter exposes the derived entity queries the extractors consume.
type Adapter struct {
	rec    Recognizer
	skills []string
	params heuristics.Params
	logger *slog.Logger
}

func NewAdapter(cfg Config) *Adapter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Skills) == 0 {
		cfg.Skills = DefaultSkills
	}
	if cfg.Params == (heuristics.Params{}) {
		cfg.Params = heuristics.Defaults()
	}
	return &Adapter{
		rec:    cfg.Recognizer,
		skills: cfg.Skills,
		params: cfg.Params,
		logger: cfg.Logger,
	}
}

// Available reports whether a collaborator is wired in.
func (a *Adapter) Available() bool {
	return a.rec != nil
}

// Entities returns the raw mentions per category. Unavailability and
// collaborator errors both yield a complete map of empty categories.
func (a *Adapter) Entities(ctx context.Context, text string) map[Category][]Mention {
	if a.rec == nil || text == "" {
		return emptyEntities()
	}
	out, err := a.rec.Entities(ctx, text)
	if err != nil {
		a.logger.Warn("ner.degraded", "error", err)
		return emptyEntities()
	}
	for _, c := range Categories {
		if out[c] == nil {
			out[c] = []Mention{}
		}
	}
	return out
}

// PersonNames filters PERSON mentions: multi-token names pass, single
// tokens only when longer than 3 chars and capitalized.
func (a *Adapter) PersonNames(ctx context.Context, text string) []fields.Field {
	results := make([]fields.Field, 0)
	if !a.Available() {
		return results
	}
	for _, m := range a.Entities(ctx, text)[CategoryPerson] {
		value := strings.TrimSpace(m.Value)
		if len(strings.Fields(value)) > 1 || (len(value) > 3 && startsUpper(value)) {
			results = append(results, fields.NewSpanned(value, constants.FieldPersonName, 0.9, constants.SourceEntity, m.Start, m.End, m.Value))
		}
	}
	return results
}

// Companies buckets ORG mentions. A customer marker ("bill to", "ship to",
// "customer") in the window before the mention flags a customer; otherwise
// the first unclassified ORG is taken as the vendor and later ones are
// weaker vendor candidates.
func (a *Adapter) Companies(ctx context.Context, text string) (vendor, customer []fields.Field) {
	vendor = make([]fields.Field, 0)
	customer = make([]fields.Field, 0)
	if !a.Available() {
		return vendor, customer
	}

	firstOrgFound := false
	for _, m := range a.Entities(ctx, text)[CategoryOrg] {
		start := clamp(m.Start, 0, len(text))
		preStart := clamp(start-a.params.ContextWindow, 0, len(text))
		preWindow := strings.ToLower(text[preStart:start])

		isCustomer := false
		confidence := 0.5
		if strings.Contains(preWindow, "bill to") || strings.Contains(preWindow, "ship to") || strings.Contains(preWindow, "customer") {
			isCustomer = true
			confidence = 0.85
		} else if !firstOrgFound {
			confidence = 0.7
			firstOrgFound = true
		}

		f := fields.NewSpanned(strings.TrimSpace(m.Value), constants.FieldCompanyName, confidence, constants.SourceEntity, m.Start, m.End, m.Value)
		if isCustomer {
			customer = append(customer, f)
		} else {
			vendor = append(vendor, f)
		}
	}
	return vendor, customer
}

// Addresses anchors on US ZIP codes and expands each hit to its full line.
// The line must contain at least one letter.
func (a *Adapter) Addresses(text string) []fields.Field {
	results := make([]fields.Field, 0)
	if !a.Available() {
		return results
	}
	for _, loc := range reZIP.FindAllStringIndex(text, -1) {
		lineStart := strings.LastIndex(text[:loc[0]], "\n")
		if lineStart == -1 {
			lineStart = 0
		}
		lineEnd := strings.Index(text[loc[1]:], "\n")
		if lineEnd == -1 {
			lineEnd = len(text)
		} else {
			lineEnd += loc[1]
		}

		fullLine := strings.TrimSpace(text[lineStart:lineEnd])
		if !containsLetter(fullLine) {
			continue
		}
		results = append(results, fields.NewSpanned(fullLine, constants.FieldAddress, 0.8, constants.SourceEntity, lineStart, lineEnd, fullLine))
	}
	return results
}

// Skills phrase-matches the vocabulary with word boundaries, in document
// order, keeping the first occurrence of each distinct skill.
func (a *Adapter) Skills(text string) []fields.Field {
	results := make([]fields.Field, 0)
	if !a.Available() || text == "" {
		return results
	}

	type hit struct {
		start, end int
		value      string
	}
	hits := make([]hit, 0)
	for _, phrase := range a.skills {
		for from := 0; from < len(text); {
			rel := strings.Index(text[from:], phrase)
			if rel < 0 {
				break
			}
			s := from + rel
			e := s + len(phrase)
			if phraseBoundaryOK(text, s, e) {
				hits = append(hits, hit{start: s, end: e, value: phrase})
			}
			from = s + 1
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	seen := make(map[string]struct{})
	for _, h := range hits {
		if _, dup := seen[h.value]; dup {
			continue
		}
		seen[h.value] = struct{}{}
		results = append(results, fields.NewSpanned(h.value, constants.FieldSkill, 1.0, constants.SourceEntity, h.start, h.end, h.value))
	}
	return results
}

// JobTitles matches role-keyword phrases followed by a connector and an
// employer-looking phrase.
func (a *Adapter) JobTitles(text string) []fields.Field {
	results := make([]fields.Field, 0)
	if !a.Available() {
		return results
	}
	for _, m := range reJobTitle.FindAllStringSubmatchIndex(text, -1) {
		title := strings.TrimSpace(text[m[2]:m[3]])
		raw := text[m[0]:m[1]]
		results = append(results, fields.NewSpanned(title, constants.FieldJobTitle, 0.75, constants.SourceEntity, m[0], m[1], raw))
	}
	return results
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func phraseBoundaryOK(text string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return false
		}
	}
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
