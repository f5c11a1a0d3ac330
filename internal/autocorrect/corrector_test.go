package autocorrect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/autocorrect"
	"github.com/documind/documind/internal/fields"
)

func newCorrector() *autocorrect.Corrector {
	return autocorrect.NewCorrector(autocorrect.Config{})
}

func TestCorrectAmount(t *testing.T) {
	c := newCorrector()

	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "letter O read as zero", input: "1OO.00", want: 100.0, wantOK: true},
		{name: "letter S and O inside cents", input: "5S.2O", want: 55.20, wantOK: true},
		{name: "currency symbol and thousands", input: "$1,234.56", want: 1234.56, wantOK: true},
		{name: "european separators", input: "1.234,56", want: 1234.56, wantOK: true},
		{name: "lone comma with two decimals", input: "17,81", want: 17.81, wantOK: true},
		{name: "lone comma as thousands", input: "1,234", want: 1234, wantOK: true},
		{name: "currency word dropped", input: "USD 45.00", want: 45.0, wantOK: true},
		{name: "label token dropped", input: "Total: 99.95", want: 99.95, wantOK: true},
		{name: "split digits rejoin", input: "1 234.56", want: 1234.56, wantOK: true},
		{name: "negative amount", input: "-12.50", want: -12.50, wantOK: true},
		{name: "plain number passes through", input: "250", want: 250, wantOK: true},
		{name: "empty input", input: "", wantOK: false},
		{name: "no digits to parse", input: "Free", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.CorrectAmount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestCorrectDate(t *testing.T) {
	c := newCorrector()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "plain month name form", input: "Jan 5, 2023", want: "2023-01-05", wantOK: true},
		{name: "label prefix shed", input: "Due: Jan 5, 2023", want: "2023-01-05", wantOK: true},
		{name: "two-word label shed", input: "Invoice Date: 2023-02-05;", want: "2023-02-05", wantOK: true},
		{name: "trailing punctuation shed", input: "15/11/2023.", want: "2023-11-15", wantOK: true},
		{name: "already iso", input: "2023-01-05", want: "2023-01-05", wantOK: true},
		{name: "hopeless input", input: "not a date at all", wantOK: false},
		{name: "empty input", input: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.CorrectDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCorrectPhone(t *testing.T) {
	c := newCorrector()

	got, ok := c.CorrectPhone("(212) 555-0123", "")
	require.True(t, ok)
	assert.Equal(t, "+12125550123", got)

	got, ok = c.CorrectPhone("020 7946 0958", "GB")
	require.True(t, ok)
	assert.Equal(t, "+442079460958", got)

	// Unassigned area code parses but fails validity.
	_, ok = c.CorrectPhone("(555) 123-4567", "")
	assert.False(t, ok)

	_, ok = c.CorrectPhone("123-4567", "")
	assert.False(t, ok, "local numbers without an area code are not valid")

	_, ok = c.CorrectPhone("", "")
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	c := newCorrector()

	got := c.Suggest("1OO.00", constants.FieldCurrency, 0.4)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0])

	got = c.Suggest("Jan 5, 2023", constants.FieldDate, 0.4)
	require.Len(t, got, 1)
	assert.Equal(t, "2023-01-05", got[0])

	assert.Empty(t, c.Suggest("2023-01-05", constants.FieldDate, 0.4), "no-op repairs are not suggested")
	assert.Empty(t, c.Suggest("a@acme.io", constants.FieldEmail, 0.4), "only dates and amounts have repairs")
}

func TestApply(t *testing.T) {
	c := newCorrector()

	header := fields.NewSet().
		PutLeaf("invoice_date", fields.New("Jan 5, 2023", constants.FieldDate, 0.9, constants.SourcePattern)).
		PutLeaf("due_date", fields.New("2023-02-05", constants.FieldDate, 0.9, constants.SourcePattern))
	totals := fields.NewSet().
		PutLeaf("total_amount", fields.New("1OO.00", constants.FieldText, 0.9, constants.SourcePattern)).
		PutLeaf("subtotal", fields.New(100.0, constants.FieldCurrency, 0.9, constants.SourcePattern)).
		PutLeaf("tax", fields.New("5.00", constants.FieldText, 0.9, constants.SourcePattern))
	tree := fields.NewSet().
		Put("header", fields.Group(header)).
		Put("totals", fields.Group(totals)).
		PutLeaf("phone_number", fields.New("(212) 555-0123", constants.FieldPhone, 0.85, constants.SourcePattern)).
		PutLeaf("email", fields.New("ap@acme.io", constants.FieldEmail, 1.0, constants.SourcePattern))

	out, corrected := c.Apply(tree)

	// invoice_date, total_amount, tax retype, phone. due_date and subtotal
	// already hold their normal forms and email has no repair rule.
	assert.Equal(t, 4, corrected)

	date := out.FindLeaf("invoice_date")[0]
	assert.Equal(t, "2023-01-05", date.Value)
	assert.True(t, date.Corrected)
	assert.Equal(t, "Jan 5, 2023", date.OriginalValue)
	assert.Equal(t, 0.9, date.Confidence, "confidence is preserved through repair")
	assert.Equal(t, constants.SourcePattern, date.Source)

	assert.False(t, out.FindLeaf("due_date")[0].Corrected)

	total := out.FindLeaf("total_amount")[0]
	assert.Equal(t, 100.0, total.Value)
	assert.True(t, total.Corrected)
	assert.Equal(t, "1OO.00", total.OriginalValue)

	assert.False(t, out.FindLeaf("subtotal")[0].Corrected, "numeric values already equal are untouched")

	tax := out.FindLeaf("tax")[0]
	assert.Equal(t, 5.0, tax.Value, "string amounts are retyped to floats")
	assert.True(t, tax.Corrected)

	phone := out.FindLeaf("phone_number")[0]
	assert.Equal(t, "+12125550123", phone.Value)
	assert.True(t, phone.Corrected)

	assert.False(t, out.FindLeaf("email")[0].Corrected)

	// The input tree still holds the raw values.
	assert.Equal(t, "1OO.00", tree.FindLeaf("total_amount")[0].Value)
	assert.Equal(t, "Jan 5, 2023", tree.FindLeaf("invoice_date")[0].Value)
}

func TestApplyFlagsExtractionNormalizedDates(t *testing.T) {
	c := newCorrector()

	// A date field whose value was already normalized to ISO during
	// extraction keeps the raw form in OriginalText.
	tree := fields.NewSet().PutLeaf("invoice_date", fields.NewSpanned(
		"2023-01-05", constants.FieldDate, 0.9, constants.SourcePattern, 20, 31, "Jan 5, 2023"))

	out, corrected := c.Apply(tree)

	assert.Equal(t, 1, corrected)
	date := out.FindLeaf("invoice_date")[0]
	assert.Equal(t, "2023-01-05", date.Value)
	assert.True(t, date.Corrected)
	assert.Equal(t, "Jan 5, 2023", date.OriginalValue)
}

func TestApplyNothingToCorrect(t *testing.T) {
	c := newCorrector()
	tree := fields.NewSet().PutLeaf("email", fields.New("a@acme.io", constants.FieldEmail, 1.0, constants.SourcePattern))
	out, corrected := c.Apply(tree)
	assert.Equal(t, 0, corrected)
	assert.Equal(t, "a@acme.io", out.FindLeaf("email")[0].Value)
}
