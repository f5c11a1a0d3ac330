package fields_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
)

func textField(value string, confidence float64) fields.Field {
	return fields.New(value, constants.FieldText, confidence, constants.SourcePattern)
}

// invoiceTree builds a small but representative tree: a leaf at the root, a
// nested group, and a list with two records.
func invoiceTree() *fields.Set {
	header := fields.NewSet().
		PutLeaf("invoice_number", fields.New("INV-1001", constants.FieldInvoiceNumber, 0.85, constants.SourcePattern)).
		PutLeaf("invoice_date", fields.New("2023-01-05", constants.FieldDate, 0.9, constants.SourcePattern))

	item1 := fields.NewSet().
		PutLeaf("description", textField("Widget", 0.8)).
		PutLeaf("total_price", fields.New(10.50, constants.FieldCurrency, 0.8, constants.SourcePattern))
	item2 := fields.NewSet().
		PutLeaf("description", textField("Gadget", 0.8)).
		PutLeaf("total_price", fields.New(4.25, constants.FieldCurrency, 0.8, constants.SourcePattern))

	return fields.NewSet().
		PutLeaf("email", fields.New("ap@acme.io", constants.FieldEmail, 1.0, constants.SourcePattern)).
		Put("header", fields.Group(header)).
		Put("line_items", fields.List(item1, item2))
}

func TestSetOrderingAndReplace(t *testing.T) {
	s := fields.NewSet().
		PutLeaf("b", textField("two", 0.5)).
		PutLeaf("a", textField("one", 0.5)).
		PutLeaf("c", textField("three", 0.5))

	assert.Equal(t, []string{"b", "a", "c"}, s.Keys(), "keys follow insertion order, not sort order")
	assert.Equal(t, 3, s.Len())

	// Replacing a key keeps its original position.
	s.PutLeaf("a", textField("uno", 0.9))
	assert.Equal(t, []string{"b", "a", "c"}, s.Keys())

	f, ok := s.First("a")
	require.True(t, ok)
	assert.Equal(t, "uno", f.Value)
}

func TestSetLeafAccess(t *testing.T) {
	s := fields.NewSet().PutLeaf("phone", textField("555-1234", 0.85), textField("555-9876", 0.85))

	ff := s.Leaf("phone")
	require.Len(t, ff, 2)
	assert.Equal(t, "555-1234", ff[0].Value, "occurrences keep document order")

	first, ok := s.First("phone")
	require.True(t, ok)
	assert.Equal(t, "555-1234", first.Value)

	// Missing keys yield empty, non-nil slices and a false First.
	missing := s.Leaf("nope")
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
	_, ok = s.First("nope")
	assert.False(t, ok)
}

func TestSetAppendLeaf(t *testing.T) {
	s := fields.NewSet().PutLeaf("url", textField("https://a.example.org", 0.95))
	s.AppendLeaf("url", textField("https://b.example.org", 0.95))
	s.AppendLeaf("date", textField("2023-01-05", 0.9))

	assert.Len(t, s.Leaf("url"), 2)
	assert.Len(t, s.Leaf("date"), 1, "append on a missing key creates the leaf")
	assert.Equal(t, []string{"url", "date"}, s.Keys())
}

func TestSetClone(t *testing.T) {
	orig := invoiceTree()
	cloned := orig.Clone()

	cloned.PutLeaf("email", textField("changed@acme.io", 1.0))
	header, ok := cloned.Node("header")
	require.True(t, ok)
	hs, ok := header.GroupSet()
	require.True(t, ok)
	hs.PutLeaf("invoice_number", textField("INV-9999", 1.0))

	f, ok := orig.First("email")
	require.True(t, ok)
	assert.Equal(t, "ap@acme.io", f.Value, "mutating the clone must not touch the original")
	assert.Equal(t, "INV-1001", orig.FindLeaf("invoice_number")[0].Value)
}

func TestSetFlattenPaths(t *testing.T) {
	flat := invoiceTree().Flatten()

	paths := make([]string, 0, len(flat))
	for _, ff := range flat {
		paths = append(paths, ff.Path)
	}
	assert.Equal(t, []string{
		"email",
		"header.invoice_number",
		"header.invoice_date",
		"line_items.0.description",
		"line_items.0.total_price",
		"line_items.1.description",
		"line_items.1.total_price",
	}, paths)

	assert.Equal(t, "invoice_number", flat[1].Key)
	assert.Equal(t, "INV-1001", flat[1].Field.Value)
}

func TestSetFindLeaf(t *testing.T) {
	s := invoiceTree()

	// Root leaves win over nested ones of the same name.
	ff := s.FindLeaf("email")
	require.Len(t, ff, 1)
	assert.Equal(t, "ap@acme.io", ff[0].Value)

	// Nested group leaf.
	ff = s.FindLeaf("invoice_number")
	require.Len(t, ff, 1)
	assert.Equal(t, "INV-1001", ff[0].Value)

	// First list record wins for list-nested keys.
	ff = s.FindLeaf("description")
	require.Len(t, ff, 1)
	assert.Equal(t, "Widget", ff[0].Value)

	assert.Empty(t, s.FindLeaf("absent"))
	assert.NotNil(t, s.FindLeaf("absent"))
}

func TestSetTransform(t *testing.T) {
	orig := invoiceTree()

	var visited []string
	out := orig.Transform(func(path, key string, f fields.Field) (fields.Field, bool) {
		visited = append(visited, path)
		if key == "description" {
			return f.CorrectedTo("REDACTED"), true
		}
		return fields.Field{}, false
	})

	assert.Contains(t, visited, "line_items.1.total_price", "transform offers list occurrences with indexed paths")

	assert.Equal(t, "Widget", orig.FindLeaf("description")[0].Value, "receiver is never modified")
	replaced := out.FindLeaf("description")[0]
	assert.Equal(t, "REDACTED", replaced.Value)
	assert.True(t, replaced.Corrected)
	assert.Equal(t, "Widget", replaced.OriginalValue)
}

func TestSetJSONRoundTrip(t *testing.T) {
	orig := invoiceTree()

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var restored fields.Set
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, orig.Keys(), restored.Keys(), "key order survives the round trip")

	header, ok := restored.Node("header")
	require.True(t, ok)
	assert.Equal(t, fields.KindGroup, header.Kind())

	items, ok := restored.Node("line_items")
	require.True(t, ok)
	assert.Equal(t, fields.KindList, items.Kind())
	require.Len(t, items.ListSets(), 2)

	f, ok := restored.First("email")
	require.True(t, ok)
	assert.Equal(t, "ap@acme.io", f.Value)
	assert.Equal(t, constants.FieldEmail, f.Type)
	assert.Equal(t, 1.0, f.Confidence)

	// Numeric leaf values come back as float64, same as they went in.
	total := restored.FindLeaf("total_price")
	require.NotEmpty(t, total)
	assert.Equal(t, 10.50, total[0].Value)
}

func TestSetJSONEmptyLeaf(t *testing.T) {
	s := fields.NewSet().Put("skills", fields.Leaf())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"skills":[]}`, string(data))

	var restored fields.Set
	require.NoError(t, json.Unmarshal(data, &restored))
	n, ok := restored.Node("skills")
	require.True(t, ok)
	assert.Equal(t, fields.KindLeaf, n.Kind())
	assert.Empty(t, n.Fields())
}

func TestFieldValueString(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "string passes through", value: "hello", want: "hello"},
		{name: "whole float drops the fraction", value: 100.0, want: "100"},
		{name: "fractional float keeps precision", value: 17.81, want: "17.81"},
		{name: "int renders as decimal", value: 42, want: "42"},
		{name: "nil renders empty", value: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields.New(tt.value, constants.FieldText, 1.0, constants.SourcePattern)
			assert.Equal(t, tt.want, f.ValueString())
		})
	}
}

func TestFieldValueFloat(t *testing.T) {
	f := fields.New("123.45", constants.FieldCurrency, 0.9, constants.SourcePattern)
	v, ok := f.ValueFloat()
	require.True(t, ok)
	assert.InDelta(t, 123.45, v, 1e-9)

	f = fields.New("not a number", constants.FieldText, 0.9, constants.SourcePattern)
	_, ok = f.ValueFloat()
	assert.False(t, ok)

	f = fields.New(7, constants.FieldNumber, 0.9, constants.SourcePattern)
	v, ok = f.ValueFloat()
	require.True(t, ok)
	assert.Equal(t, 7.0, v)
}

func TestSpanOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b fields.Span
		want bool
	}{
		{name: "identical", a: fields.Span{Start: 0, End: 5}, b: fields.Span{Start: 0, End: 5}, want: true},
		{name: "partial overlap", a: fields.Span{Start: 0, End: 5}, b: fields.Span{Start: 3, End: 8}, want: true},
		{name: "containment", a: fields.Span{Start: 0, End: 10}, b: fields.Span{Start: 2, End: 4}, want: true},
		{name: "adjacent half-open intervals do not touch", a: fields.Span{Start: 0, End: 5}, b: fields.Span{Start: 5, End: 9}, want: false},
		{name: "disjoint", a: fields.Span{Start: 0, End: 2}, b: fields.Span{Start: 6, End: 8}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap is symmetric")
		})
	}
}
