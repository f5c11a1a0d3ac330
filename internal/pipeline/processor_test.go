package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/ner"
	"github.com/documind/documind/internal/pipeline"
)

const invoiceText = `INVOICE
Invoice No: INV-2023-1001
Date: Jan 5, 2023
Due Date: Feb 4, 2023

Description    Qty    Unit Price    Amount
Steel Brackets    10    2.50    25.00
Safety Gloves    5    4.00    20.00

Subtotal: 45.00
Tax: 3.71
Total: 48.7l
Payment Terms: Net 30
`

func TestProcessInvoice(t *testing.T) {
	p := pipeline.NewProcessor(pipeline.Config{})

	result := p.Process(context.Background(), invoiceText)

	require.Equal(t, pipeline.StatusSuccess, result.Status)
	assert.Empty(t, result.Error)
	assert.Equal(t, constants.Invoice, result.DocumentType)
	assert.Equal(t, 1.0, result.Classification.Confidence)
	assert.Contains(t, result.Classification.MatchedSignals, "payment terms")

	number := result.Fields.FindLeaf("invoice_number")
	require.NotEmpty(t, number)
	assert.Equal(t, "INV-2023-1001", number[0].Value)

	date := result.Fields.FindLeaf("invoice_date")
	require.NotEmpty(t, date)
	assert.Equal(t, "2023-01-05", date[0].Value)
	assert.True(t, date[0].Corrected)
	assert.Equal(t, "Jan 5, 2023", date[0].OriginalValue)

	// The OCR-mangled grand total survives extraction as a raw string and
	// is repaired in the correction stage.
	total := result.Fields.FindLeaf("total_amount")
	require.NotEmpty(t, total)
	assert.Equal(t, 48.71, total[0].Value)
	assert.True(t, total[0].Corrected)
	assert.Equal(t, "48.7l", total[0].OriginalValue)

	assert.True(t, result.Validation.DocumentValid)
	assert.Empty(t, result.Validation.LogicErrors)
	assert.Equal(t, map[string]bool{
		"subtotal":     true,
		"tax":          true,
		"total_amount": true,
		"invoice_date": true,
		"due_date":     true,
	}, result.Validation.FieldValidations)

	stages := make([]string, 0, len(result.Performance.Stages))
	for _, s := range result.Performance.Stages {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []string{"classification", "extraction", "correction", "validation"}, stages)
}

func TestProcessRepairsCorruptedTotal(t *testing.T) {
	p := pipeline.NewProcessor(pipeline.Config{})

	result := p.Process(context.Background(), "Invoice #123\nDate: Jan 5, 2023\nTotal: $1OO.00")

	require.Equal(t, pipeline.StatusSuccess, result.Status)
	assert.Equal(t, constants.Invoice, result.DocumentType)

	date := result.Fields.FindLeaf("invoice_date")
	require.Len(t, date, 1)
	assert.Equal(t, "2023-01-05", date[0].Value)
	assert.True(t, date[0].Corrected)

	total := result.Fields.FindLeaf("total_amount")
	require.Len(t, total, 1)
	assert.Equal(t, 100.0, total[0].Value)
	assert.True(t, total[0].Corrected)
	assert.Equal(t, "1OO.00", total[0].OriginalValue)

	assert.True(t, result.Validation.DocumentValid)
}

func TestProcessReceipt(t *testing.T) {
	p := pipeline.NewProcessor(pipeline.Config{})

	text := "SUPERMART\nReceipt #: R-042\n11/15/2023 14:32\nMilk 3.49\nTotal: 17.81\nThank you for shopping!\n"
	result := p.Process(context.Background(), text)

	require.Equal(t, pipeline.StatusSuccess, result.Status)
	assert.Equal(t, constants.Receipt, result.DocumentType)
	assert.Equal(t, 0.625, result.Classification.Confidence)

	merchant := result.Fields.FindLeaf("name")
	require.NotEmpty(t, merchant)
	assert.Equal(t, "SUPERMART", merchant[0].Value)

	date := result.Fields.FindLeaf("date")
	require.NotEmpty(t, date)
	assert.Equal(t, "2023-11-15", date[0].Value)
	assert.True(t, date[0].Corrected)
	assert.Equal(t, "11/15/2023", date[0].OriginalValue)

	total := result.Fields.FindLeaf("total_amount")
	require.NotEmpty(t, total)
	assert.Equal(t, 17.81, total[0].Value)
	assert.False(t, total[0].Corrected, "already-clean totals are left alone")

	assert.True(t, result.Validation.DocumentValid)
}

func TestProcessRoutesRecognizerThroughConfig(t *testing.T) {
	p := pipeline.NewProcessor(pipeline.Config{
		Recognizer: &fakeRecognizer{people: []string{"Jane Doe"}},
	})

	text := "RESUME\n\nJane Doe\njane@proton.me\n\nSKILLS\nPython\n"
	result := p.Process(context.Background(), text)

	require.Equal(t, pipeline.StatusSuccess, result.Status)
	assert.Equal(t, constants.Resume, result.DocumentType)

	name := result.Fields.FindLeaf("name")
	require.NotEmpty(t, name)
	assert.Equal(t, "Jane Doe", name[0].Value)
	assert.Equal(t, 0.9, name[0].Confidence, "the recognizer confirms the name heuristic")

	skills := result.Fields.FindLeaf("all")
	require.Len(t, skills, 1)
	assert.Equal(t, "Python", skills[0].Value)
}

func TestProcessUnknownFallsBack(t *testing.T) {
	p := pipeline.NewProcessor(pipeline.Config{})

	result := p.Process(context.Background(), "reach us at support@acme.io for anything else")

	require.Equal(t, pipeline.StatusSuccess, result.Status)
	assert.Equal(t, constants.Unknown, result.DocumentType)
	assert.Equal(t, 0.0, result.Classification.Confidence)
	assert.Empty(t, result.Classification.MatchedSignals)

	assert.Equal(t, 11, result.Fields.Len(), "the fallback layout is flat and fixed")
	email := result.Fields.FindLeaf("email")
	require.Len(t, email, 1)
	assert.Equal(t, "support@acme.io", email[0].Value)

	assert.True(t, result.Validation.DocumentValid)
}

func TestProcessEmptyText(t *testing.T) {
	p := pipeline.NewProcessor(pipeline.Config{})

	result := p.Process(context.Background(), "")

	require.Equal(t, pipeline.StatusSuccess, result.Status)
	assert.Equal(t, constants.Unknown, result.DocumentType)
	assert.Equal(t, 0.0, result.Classification.Confidence)
	assert.Equal(t, 0, result.Fields.Len())
	assert.True(t, result.Validation.DocumentValid)
	assert.Len(t, result.Performance.Stages, 4)
}

// fakeRecognizer reports a canned person list, with offsets into whatever
// text it is queried with.
type fakeRecognizer struct {
	people []string
}

func (f *fakeRecognizer) Entities(_ context.Context, text string) (map[ner.Category][]ner.Mention, error) {
	out := make(map[ner.Category][]ner.Mention)
	for _, p := range f.people {
		if idx := strings.Index(text, p); idx >= 0 {
			out[ner.CategoryPerson] = append(out[ner.CategoryPerson], ner.Mention{Value: p, Start: idx, End: idx + len(p)})
		}
	}
	return out, nil
}
