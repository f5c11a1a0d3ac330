// Package heuristics collects the tuned thresholds the extraction and
// validation stages share. Every magic number lives here so the engine's
// behavior is inspectable and overridable in one place.
package heuristics

// Params carries the tuned constants. Zero value is not useful; start from
// Defaults and override selectively.
type Params struct {
	// SimilarityThreshold is the 0-100 fuzzy-ratio cutoff above which two
	// field values from different sources count as the same observation.
	SimilarityThreshold float64

	// PrimaryWeight and SecondaryWeight blend confidences when two sources
	// agree on a value. They should sum to 1.
	PrimaryWeight   float64
	SecondaryWeight float64

	// ContextWindow is how many bytes before an organization mention are
	// scanned for customer markers ("bill to", "ship to").
	ContextWindow int

	// MerchantScanLines bounds the top-of-receipt search for a merchant name.
	MerchantScanLines int

	// NameScanLines bounds the top-of-resume search for the candidate name.
	NameScanLines int

	// SectionHeaderMaxWords is the longest line still considered a resume
	// section header.
	SectionHeaderMaxWords int

	// LineItemTolerance is the absolute allowance between the sum of invoice
	// line totals and the extracted subtotal.
	LineItemTolerance float64

	// BalanceTolerance is the absolute allowance in the invoice equation
	// subtotal + tax + shipping - discount = total.
	BalanceTolerance float64

	// SuspiciousAmount is the magnitude above which an amount is logged as
	// suspicious while staying valid.
	SuspiciousAmount float64

	// MinYear and YearHorizon bound plausible document dates: a date is valid
	// when MinYear <= year <= current year + YearHorizon.
	MinYear     int
	YearHorizon int
}

// Defaults returns the tuned values the engine ships with.
func Defaults() Params {
	return Params{
		SimilarityThreshold:   85.0,
		PrimaryWeight:         0.7,
		SecondaryWeight:       0.3,
		ContextWindow:         50,
		MerchantScanLines:     5,
		NameScanLines:         5,
		SectionHeaderMaxWords: 5,
		LineItemTolerance:     1.0,
		BalanceTolerance:      0.05,
		SuspiciousAmount:      1e9,
		MinYear:               1900,
		YearHorizon:           10,
	}
}
