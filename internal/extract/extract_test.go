package extract_test

import (
	"context"
	"strings"

	"github.com/documind/documind/internal/extract"
	"github.com/documind/documind/internal/ner"
)

// fakeRecognizer reports a mention only when its value occurs in the queried
// text, with offsets into that text. This keeps the adapter's windowed
// queries honest in the same way a real collaborator would.
type fakeRecognizer struct {
	values map[ner.Category][]string
}

func (f *fakeRecognizer) Entities(_ context.Context, text string) (map[ner.Category][]ner.Mention, error) {
	out := make(map[ner.Category][]ner.Mention)
	for cat, values := range f.values {
		for _, v := range values {
			idx := strings.Index(text, v)
			if idx < 0 {
				continue
			}
			out[cat] = append(out[cat], ner.Mention{Value: v, Start: idx, End: idx + len(v)})
		}
	}
	return out, nil
}

func depsWith(values map[ner.Category][]string) extract.Deps {
	return extract.Deps{
		Entities: ner.NewAdapter(ner.Config{Recognizer: &fakeRecognizer{values: values}}),
	}
}
