package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
)

// amountToken tolerates the common OCR letter-for-digit confusions inside a
// price so the repair pass downstream gets a chance at the value.
const amountToken = `([0-9OoSsBlIZ,]+\.[0-9OoSsBlIZ]{2})`

var (
	rePONumber    = regexp.MustCompile(`(?i)\b(?:P\.O\.|Purchase Order|PO Number|PO)\b\s*[:#]?\s*([A-Z0-9-]+)`)
	reColumnsRow  = regexp.MustCompile(`(?i)(description|item|qty|quantity|rate|unit price|amount|total)`)
	reTotalsRow   = regexp.MustCompile(`(?i)^(subtotal|total|tax|amount due)`)
	reLineItemRow = regexp.MustCompile(`^(.+?)\s+(\d+)?\s*\$?\s*([0-9,]+\.\d{2})\s*\$?\s*([0-9,]+\.\d{2})$`)
	reNetTerms    = regexp.MustCompile(`(?i)(net\s*\d+)`)
	reDueInTerms  = regexp.MustCompile(`(?i)(due\s*in\s*\d+\s*days)`)
	reFreeTerms   = regexp.MustCompile(`(?i)(payment\s*terms\s*[:]?\s*[\w\s]+)`)

	// Ordered so the totals group serializes in a stable layout.
	reTotalLabels = []struct {
		key string
		re  *regexp.Regexp
	}{
		{"subtotal", regexp.MustCompile(`(?i)(?:subtotal|sub text|net amount|sub-total).*?[:\s]+\$?` + amountToken)},
		{"tax", regexp.MustCompile(`(?i)(?:tax|vat|gst).*?[:\s]+\$?` + amountToken)},
		{"total_amount", regexp.MustCompile(`(?i)\b(?:total|amount due|grand total)\b.*?[:\s]+\$?` + amountToken)},
		{"discount", regexp.MustCompile(`(?i)(?:discount).*?[:\s]+\$?` + amountToken)},
		{"shipping", regexp.MustCompile(`(?i)(?:shipping|freight).*?[:\s]+\$?` + amountToken)},
	}

	moneyCleaner = strings.NewReplacer(",", "", "$", "")
)

// InvoiceExtractor shapes invoices: header, parties, line items, totals and
// payment terms.
type InvoiceExtractor struct {
	deps Deps
}

func NewInvoiceExtractor(deps Deps) *InvoiceExtractor {
	return &InvoiceExtractor{deps: deps.withDefaults()}
}

func (e *InvoiceExtractor) Type() constants.DocumentType {
	return constants.Invoice
}

func (e *InvoiceExtractor) Extract(ctx context.Context, text string) (*Result, error) {
	if text == "" {
		e.deps.Logger.Warn("extract.invoice.empty_text")
		return emptyResult(constants.Invoice), nil
	}

	tree := fields.NewSet()
	tree.Put("header", fields.Group(e.header(text)))

	vendor, customer := e.parties(ctx, text)
	tree.Put("vendor", fields.Group(vendor))
	tree.Put("customer", fields.Group(customer))

	items := e.lineItems(text)
	tree.Put("line_items", fields.List(items...))

	totals, findings := e.totals(text, items)
	tree.Put("totals", fields.Group(totals))
	tree.Put("payment_terms", fields.Group(e.paymentTerms(text)))

	e.deps.Logger.Info("extract.invoice.done",
		"line_items", len(items),
		"totals", totals.Len(),
		"findings", len(findings))
	return &Result{Type: constants.Invoice, Fields: tree, Findings: findings}, nil
}

// header pulls the identifier, the first two dates (issue then due, a
// documented ambiguity) and the PO number.
func (e *InvoiceExtractor) header(text string) *fields.Set {
	header := fields.NewSet()

	if id, ok := firstOrNothing(e.deps.Patterns.Identifiers(text)); ok {
		header.PutLeaf("invoice_number", id)
	}

	dates := e.deps.Patterns.Dates(text)
	if len(dates) > 0 {
		header.PutLeaf("invoice_date", dates[0])
	}
	if len(dates) > 1 {
		header.PutLeaf("due_date", dates[1])
	}

	if m := rePONumber.FindStringSubmatchIndex(text); m != nil {
		header.PutLeaf("po_number", fields.NewSpanned(
			text[m[2]:m[3]], constants.FieldText, 0.9, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	return header
}

func (e *InvoiceExtractor) parties(ctx context.Context, text string) (vendor, customer *fields.Set) {
	vendor = fields.NewSet()
	customer = fields.NewSet()

	vendors, customers := e.deps.Entities.Companies(ctx, text)
	if f, ok := firstOrNothing(vendors); ok {
		vendor.PutLeaf("name", f)
	}
	if f, ok := firstOrNothing(customers); ok {
		customer.PutLeaf("name", f)
	}

	addresses := e.deps.Entities.Addresses(text)
	if len(addresses) > 0 {
		vendor.PutLeaf("address", addresses[0])
	}
	if len(addresses) > 1 {
		customer.PutLeaf("address", addresses[1])
	}

	if f, ok := firstOrNothing(e.deps.Patterns.Emails(text)); ok {
		vendor.PutLeaf("email", f)
	}
	if f, ok := firstOrNothing(e.deps.Patterns.PhoneNumbers(text)); ok {
		vendor.PutLeaf("phone", f)
	}
	return vendor, customer
}

// lineItems scans rows between a columns-header line and the first totals
// line. A row is description, optional quantity, unit price, line total.
func (e *InvoiceExtractor) lineItems(text string) []*fields.Set {
	items := make([]*fields.Set, 0)
	parsing := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if reColumnsRow.MatchString(line) {
			parsing = true
			continue
		}
		if !parsing {
			continue
		}
		if reTotalsRow.MatchString(line) {
			break
		}

		m := reLineItemRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		quantity := fields.New("1", constants.FieldNumber, 0.8, constants.SourceDefault)
		if m[2] != "" {
			quantity = fields.New(m[2], constants.FieldNumber, 0.8, constants.SourcePattern)
		}

		rec := fields.NewSet()
		rec.PutLeaf("description", fields.New(strings.TrimSpace(m[1]), constants.FieldText, 0.8, constants.SourcePattern))
		rec.PutLeaf("quantity", quantity)
		rec.PutLeaf("unit_price", fields.New(m[3], constants.FieldCurrency, 0.8, constants.SourcePattern))
		// Named total_price, not total_amount, so a tree search for the
		// invoice total cannot land on a row total first.
		rec.PutLeaf("total_price", fields.New(m[4], constants.FieldCurrency, 0.8, constants.SourcePattern))
		items = append(items, rec)
	}
	return items
}

// totals extracts labeled totals and cross-checks line items against the
// labeled subtotal. A label whose captured token does not parse keeps the
// raw token so the corrector can repair it.
func (e *InvoiceExtractor) totals(text string, items []*fields.Set) (*fields.Set, []string) {
	totals := fields.NewSet()
	findings := make([]string, 0)

	for _, label := range reTotalLabels {
		m := label.re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		raw := text[m[2]:m[3]]
		var value any = raw
		if parsed, err := strconv.ParseFloat(moneyCleaner.Replace(raw), 64); err == nil {
			value = parsed
		}
		totals.PutLeaf(label.key, fields.NewSpanned(value, constants.FieldCurrency, 0.9, constants.SourcePattern, m[2], m[3], raw))
	}

	// No labeled total: fall back to the largest free-standing amount,
	// marked as a heuristic pick.
	if _, ok := totals.Node("total_amount"); !ok {
		var best fields.Field
		max := -1.0
		for _, f := range e.deps.Patterns.Amounts(text) {
			if v, ok := f.ValueFloat(); ok && v > max {
				max = v
				best = f
			}
		}
		if max >= 0 {
			best.Confidence = 0.6
			best.Source = constants.SourceHeuristic
			totals.PutLeaf("total_amount", best)
		}
	}

	// Consistency: the line items should sum to the labeled subtotal.
	if len(items) > 0 {
		if sub, ok := totals.First("subtotal"); ok {
			if subVal, ok := cleanMoney(sub.Value); ok {
				calc := decimal.Zero
				for _, rec := range items {
					if f, ok := rec.First("total_price"); ok {
						if v, ok := cleanMoney(f.Value); ok {
							calc = calc.Add(decimal.NewFromFloat(v))
						}
					}
				}
				subDec := decimal.NewFromFloat(subVal)
				tolerance := decimal.NewFromFloat(e.deps.Params.LineItemTolerance)
				if calc.Sub(subDec).Abs().GreaterThan(tolerance) {
					findings = append(findings, fmt.Sprintf(
						"Line items total (%s) does not match extracted subtotal (%s)", calc.String(), subDec.String()))
				}
			}
		}
	}
	return totals, findings
}

func (e *InvoiceExtractor) paymentTerms(text string) *fields.Set {
	terms := fields.NewSet()
	for _, re := range []*regexp.Regexp{reNetTerms, reDueInTerms, reFreeTerms} {
		if m := re.FindStringSubmatchIndex(text); m != nil {
			terms.PutLeaf("terms", fields.NewSpanned(
				text[m[2]:m[3]], constants.FieldText, 0.9, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
			break
		}
	}
	return terms
}

// cleanMoney parses a stored amount value that may still be a raw string
// with currency noise.
func cleanMoney(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		parsed, err := strconv.ParseFloat(moneyCleaner.Replace(strings.TrimSpace(t)), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
