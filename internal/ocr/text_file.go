package ocr

import (
	"fmt"
	"os"

	"github.com/documind/documind/constants"
)

// extractText reads a plain-text file as-is. No OCR ran, so confidence
// reflects only how document-like the content looks.
func (a *Adapter) extractText(path string) (TextResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TextResult{SourceType: constants.FileTypeText}, fmt.Errorf("read text file: %w", err)
	}
	txt := Normalize(string(raw))
	return TextResult{
		Text:       txt,
		SourceType: constants.FileTypeText,
		Method:     "text-file",
		Confidence: heuristicConfidence(txt),
	}, nil
}
