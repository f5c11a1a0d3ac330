// Package validate runs field plausibility checks and document-level logic
// checks over an extracted field tree. Validation failures are reportable
// outcomes, never errors.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

var (
	reEmailShape = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

	// Domains that only ever appear in templates and test fixtures.
	placeholderDomains = []string{"example.com", "test.com"}

	currencyNoise = strings.NewReplacer("$", "", ",", "")
)

// ValidEmail checks the syntactic shape and rejects placeholder domains.
func (v *Validator) ValidEmail(email string) bool {
	if email == "" || !reEmailShape.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	for _, d := range placeholderDomains {
		if domain == d {
			return false
		}
	}
	return true
}

// ValidPhone checks parseability and validity for the region, empty region
// meaning the configured default.
func (v *Validator) ValidPhone(phone, region string) bool {
	if phone == "" {
		return false
	}
	if region == "" {
		region = v.region
	}
	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// ValidDate accepts ISO YYYY-MM-DD dates with a year inside the plausible
// window.
func (v *Validator) ValidDate(date string) bool {
	if date == "" {
		return false
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	year := t.Year()
	return year >= v.params.MinYear && year <= time.Now().Year()+v.params.YearHorizon
}

// ValidAmount accepts non-negative numbers. Values beyond the suspicious
// threshold are logged but stay valid.
func (v *Validator) ValidAmount(amount any) bool {
	val, ok := amountValue(amount)
	if !ok || val < 0 {
		return false
	}
	if val > v.params.SuspiciousAmount {
		v.logger.Warn("validate.amount_suspicious", "value", val)
	}
	return true
}

func amountValue(amount any) (float64, bool) {
	switch t := amount.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		parsed, err := strconv.ParseFloat(currencyNoise.Replace(strings.TrimSpace(t)), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
