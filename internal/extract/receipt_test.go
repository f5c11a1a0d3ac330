package extract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/extract"
	"github.com/documind/documind/internal/ner"
)

const sampleReceipt = `SUPERMART
456 Market Street, Springfield, IL 62704
Tel: (212) 555-0177

11/15/2023 14:32
Receipt #: R-20231115-042
Terminal: POS7

Milk 2% Gallon        3.49
Bread Whole Wheat     2.99 T
Eggs Large Dozen      4.29
Paper Towels 6pk      5.99 T
Total savings: 0.55

Subtotal: 16.76
Tax: 1.05
Total: 17.81

VISA Card ****1234
Auth: 038271
Member #: 4471 0092
Points: 182

Thank you for shopping!
`

func TestReceiptExtract(t *testing.T) {
	e := extract.NewReceiptExtractor(depsWith(map[ner.Category][]string{
		ner.CategoryOrg: {"SUPERMART"},
	}))
	assert.Equal(t, constants.Receipt, e.Type())

	result, err := e.Extract(context.Background(), sampleReceipt)
	require.NoError(t, err)
	assert.Equal(t, constants.Receipt, result.Type)
	assert.Empty(t, result.Findings)

	tree := result.Fields
	assert.Equal(t, []string{"merchant", "transaction", "items", "payment", "loyalty", "totals"}, tree.Keys())

	merchant, _ := tree.Node("merchant")
	ms, _ := merchant.GroupSet()
	name, ok := ms.First("name")
	require.True(t, ok)
	assert.Equal(t, "SUPERMART", name.Value)
	assert.Equal(t, 0.8, name.Confidence, "org confirmation raises the merchant confidence")
	assert.Equal(t, constants.SourceHeuristic, name.Source)
	addr, _ := ms.First("address")
	assert.Equal(t, "456 Market Street, Springfield, IL 62704", addr.Value)
	phone, _ := ms.First("phone")
	assert.Equal(t, "(212) 555-0177", phone.Value)

	trans, _ := tree.Node("transaction")
	trs, _ := trans.GroupSet()
	date, _ := trs.First("date")
	assert.Equal(t, "2023-11-15", date.Value)
	clock, _ := trs.First("time")
	assert.Equal(t, "14:32", clock.Value)
	assert.Equal(t, constants.FieldTime, clock.Type)
	num, _ := trs.First("receipt_number")
	assert.Equal(t, "R-20231115-042", num.Value)
	term, _ := trs.First("terminal_id")
	assert.Equal(t, "POS7", term.Value)
	assert.Equal(t, 0.85, term.Confidence)

	items, _ := tree.Node("items")
	recs := items.ListSets()
	require.Len(t, recs, 4, "totals and tender lines are not items")

	desc, _ := recs[0].First("description")
	assert.Equal(t, "Milk 2% Gallon", desc.Value)
	price, _ := recs[0].First("total_price")
	assert.Equal(t, "3.49", price.Value)
	qty, _ := recs[0].First("quantity")
	assert.Equal(t, "1", qty.Value)
	assert.Equal(t, constants.SourceDefault, qty.Source)

	desc, _ = recs[1].First("description")
	assert.Equal(t, "Bread Whole Wheat", desc.Value, "tax markers after the price are tolerated")

	payment, _ := tree.Node("payment")
	ps, _ := payment.GroupSet()
	method, _ := ps.First("method")
	assert.Equal(t, "Visa", method.Value, "the canonical method name is kept, not the printed casing")
	last4, _ := ps.First("card_last4")
	assert.Equal(t, "1234", last4.Value)
	assert.Equal(t, 0.95, last4.Confidence)
	auth, _ := ps.First("auth_code")
	assert.Equal(t, "038271", auth.Value)

	loyalty, _ := tree.Node("loyalty")
	ls, _ := loyalty.GroupSet()
	member, _ := ls.First("member_id")
	assert.Equal(t, "4471 0092", member.Value)
	points, _ := ls.First("points")
	assert.Equal(t, "182", points.Value)
	assert.Equal(t, constants.FieldNumber, points.Type)

	totals, _ := tree.Node("totals")
	ts, _ := totals.GroupSet()
	total, ok := ts.First("total_amount")
	require.True(t, ok)
	assert.Equal(t, 17.81, total.Value, "the last labeled total wins over savings and subtotal lines")
	assert.Equal(t, 0.95, total.Confidence)
}

func TestReceiptMerchantWithoutRecognizer(t *testing.T) {
	e := extract.NewReceiptExtractor(extract.Deps{})

	result, err := e.Extract(context.Background(), "CORNER DELI\nCoffee  2.50\nTotal: 2.50\n")
	require.NoError(t, err)

	merchant, _ := result.Fields.Node("merchant")
	ms, _ := merchant.GroupSet()
	name, ok := ms.First("name")
	require.True(t, ok)
	assert.Equal(t, "CORNER DELI", name.Value)
	assert.Equal(t, 0.6, name.Confidence)

	_, ok = ms.First("address")
	assert.False(t, ok, "address anchoring needs the collaborator")
}

func TestReceiptWithoutLabeledTotal(t *testing.T) {
	e := extract.NewReceiptExtractor(extract.Deps{})

	result, err := e.Extract(context.Background(), "KIOSK 9\nGum  1.25\n")
	require.NoError(t, err)

	totals, _ := result.Fields.Node("totals")
	ts, _ := totals.GroupSet()
	assert.Equal(t, 0, ts.Len())
}

func TestReceiptEmptyText(t *testing.T) {
	e := extract.NewReceiptExtractor(extract.Deps{})

	result, err := e.Extract(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, constants.Receipt, result.Type)
	assert.Equal(t, 0, result.Fields.Len())
}
