package ocr

import (
	"regexp"
	"strings"
)

// Signals that decoded output came from a real document rather than sensor
// noise. Each match bumps the score from the 0.2 floor.
var textSignals = []struct {
	re     *regexp.Regexp
	weight float64
}{
	{regexp.MustCompile(`\b(19|20)\d{2}\b|\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`), 0.2}, // date
	{regexp.MustCompile(`\b(usd|eur|gbp|cad|aud|inr|jpy)\b|[$£€]`), 0.15},           // currency
	{regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+\.\d{2}\b`), 0.15},      // amount
	{regexp.MustCompile(`\S+@\S+\.\S+`), 0.1},                                       // email
}

// heuristicConfidence scores decoded text by how much it resembles a real
// document. It is the whole score for text files and the fallback term in
// the image blend.
func heuristicConfidence(txt string) float64 {
	lower := strings.ToLower(txt)
	score := 0.2
	for _, sig := range textSignals {
		if sig.re.MatchString(lower) {
			score += sig.weight
		}
	}
	if len(txt) > 120 { // enough content to trust
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
