// Package autocorrect normalizes extracted values and repairs the common
// OCR letter-for-digit confusions.
package autocorrect

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/nyaruka/phonenumbers"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
)

// confusableSet are the letters OCR engines habitually read in place of
// digits.
const confusableSet = "OoSsBlIZ"

// dateTrimSet is the punctuation shed from date candidates during fuzzy
// parsing.
const dateTrimSet = " .,;:!"

var (
	confusables = strings.NewReplacer(
		"O", "0", "o", "0", "S", "5", "s", "5", "B", "8", "l", "1", "I", "1", "Z", "2")
	reNonAmount = regexp.MustCompile(`[^\d.,-]`)
)

type Config struct {
	PhoneRegion string
	Logger      *slog.Logger
}

// Corrector holds only configuration and is safe for concurrent use.
type Corrector struct {
	region string
	logger *slog.Logger
}

func NewCorrector(cfg Config) *Corrector {
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = "US"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Corrector{region: cfg.PhoneRegion, logger: cfg.Logger}
}

// CorrectDate normalizes a date string to ISO YYYY-MM-DD. Parsing is fuzzy:
// label prefixes ("Due: Jan 5, 2023") and trailing punctuation are shed
// token by token until something parses.
func (c *Corrector) CorrectDate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}

	tokens := strings.Fields(trimmed)
	for i := 0; i < len(tokens); i++ {
		candidate := strings.Trim(strings.Join(tokens[i:], " "), dateTrimSet)
		if candidate == "" {
			continue
		}
		if t, err := dateparse.ParseAny(candidate); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	c.logger.Debug("autocorrect.date_unparsed", "value", s)
	return "", false
}

// CorrectAmount repairs and normalizes a monetary string. Tokens carrying
// letters outside the confusable set are dropped ("USD", "Free"), the
// confusables in the remainder are rewritten to digits, then the decimal
// separator is disambiguated: with both separators present the later one is
// decimal; a lone comma is decimal only when exactly two digits follow it.
func (c *Corrector) CorrectAmount(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}

	kept := make([]string, 0)
	for _, tok := range strings.Fields(s) {
		if hasForeignAlpha(tok) {
			continue
		}
		kept = append(kept, tok)
	}

	cleaned := reNonAmount.ReplaceAllString(confusables.Replace(strings.Join(kept, "")), "")

	comma := strings.LastIndex(cleaned, ",")
	dot := strings.LastIndex(cleaned, ".")
	switch {
	case comma != -1 && dot != -1:
		if comma < dot {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	case comma != -1:
		if len(cleaned)-comma-1 == 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CorrectPhone normalizes a phone number to E.164 for the region, empty
// region meaning the configured default. Unparseable or invalid numbers
// are not-ok.
func (c *Corrector) CorrectPhone(s, region string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	if region == "" {
		region = c.region
	}
	num, err := phonenumbers.Parse(s, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// Suggest proposes repaired values for a low-confidence field. The result
// is empty when nothing applies or the repair changes nothing.
func (c *Corrector) Suggest(value string, fieldType constants.FieldType, confidence float64) []any {
	suggestions := make([]any, 0)

	if fieldType == constants.FieldCurrency {
		if corrected, ok := c.CorrectAmount(value); ok && fields.ValueString(corrected) != value {
			suggestions = append(suggestions, corrected)
		}
	}
	if fieldType == constants.FieldDate {
		if corrected, ok := c.CorrectDate(value); ok && corrected != value {
			suggestions = append(suggestions, corrected)
		}
	}
	return suggestions
}

func hasForeignAlpha(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) && !strings.ContainsRune(confusableSet, r) {
			return true
		}
	}
	return false
}
