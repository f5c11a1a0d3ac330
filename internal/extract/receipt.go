package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/ner"
)

var (
	reClockTime   = regexp.MustCompile(`(\d{1,2}:\d{2}(?::\d{2})?\s*(?:[aApP][mM])?)`)
	reReceiptID   = regexp.MustCompile(`(?i)\b(?:Rcpt|Receipt|Trans|Transaction|Trx|Order|Inv|Invoice)\b[ \t]*[:#.]+[ \t]*([A-Z0-9-]{4,})`)
	reTerminalID  = regexp.MustCompile(`(?i)\b(?:Term|Terminal)\b[ \t]*[:#.]+[ \t]*([A-Z0-9]+)`)
	reItemRow     = regexp.MustCompile(`^(.+?)\s+\$?([0-9]+\.\d{2})\s*([T]?[A-Z]?)?$`)
	reCardLast4   = regexp.MustCompile(`(?i)(?:Acct|Card|Ends)\s*[:#]?\s*[*xX.]+(\d{4})`)
	reAuthCode    = regexp.MustCompile(`(?i)\b(?:Auth|Approval)(?:[ \t]*Code)?\b[ \t]*[:#.]+[ \t]*([A-Z0-9]+)`)
	reMemberID    = regexp.MustCompile(`(?i)(?:Member|Rewards)\s*(?:ID|#)?\s*[:]?\s*([0-9\-\s]{5,})`)
	rePoints      = regexp.MustCompile(`(?i)(?:Points|Balance)\s*[:]?\s*(\d+)`)
	reGrandTotal  = regexp.MustCompile(`(?i)\b(?:total|amount due|grand total)\b.*?[:\s]+\$?` + amountToken)
	paymentMethod = []string{"Visa", "MasterCard", "Amex", "American Express", "Discover", "Cash", "Credit Card", "Debit Card"}

	// Lines carrying these words are totals or tender, not purchasable items.
	itemExclusions = []string{"total", "subtotal", "tax", "change", "cash", "visa", "mastercard", "amex", "balance", "item"}
)

// ReceiptExtractor shapes receipts: merchant, transaction, items, payment,
// loyalty and the grand total.
type ReceiptExtractor struct {
	deps Deps
}

func NewReceiptExtractor(deps Deps) *ReceiptExtractor {
	return &ReceiptExtractor{deps: deps.withDefaults()}
}

func (e *ReceiptExtractor) Type() constants.DocumentType {
	return constants.Receipt
}

func (e *ReceiptExtractor) Extract(ctx context.Context, text string) (*Result, error) {
	if text == "" {
		e.deps.Logger.Warn("extract.receipt.empty_text")
		return emptyResult(constants.Receipt), nil
	}

	tree := fields.NewSet()
	tree.Put("merchant", fields.Group(e.merchant(ctx, text)))
	tree.Put("transaction", fields.Group(e.transaction(text)))

	items := e.items(text)
	tree.Put("items", fields.List(items...))
	tree.Put("payment", fields.Group(e.payment(text)))
	tree.Put("loyalty", fields.Group(e.loyalty(text)))
	tree.Put("totals", fields.Group(e.grandTotal(text)))

	e.deps.Logger.Info("extract.receipt.done", "items", len(items))
	return &Result{Type: constants.Receipt, Fields: tree, Findings: []string{}}, nil
}

// merchant takes the first substantial line near the top as the merchant
// name, at higher confidence when the adapter confirms it names an
// organization.
func (e *ReceiptExtractor) merchant(ctx context.Context, text string) *fields.Set {
	merchant := fields.NewSet()

	lines := strings.Split(text, "\n")
	limit := e.deps.Params.MerchantScanLines
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if len(line) <= 2 {
			continue
		}
		confidence := 0.6
		if e.deps.Entities.Available() && len(e.deps.Entities.Entities(ctx, line)[ner.CategoryOrg]) > 0 {
			confidence = 0.8
		}
		merchant.PutLeaf("name", fields.New(line, constants.FieldCompanyName, confidence, constants.SourceHeuristic))
		break
	}

	if f, ok := firstOrNothing(e.deps.Entities.Addresses(text)); ok {
		merchant.PutLeaf("address", f)
	}
	if f, ok := firstOrNothing(e.deps.Patterns.PhoneNumbers(text)); ok {
		merchant.PutLeaf("phone", f)
	}
	return merchant
}

func (e *ReceiptExtractor) transaction(text string) *fields.Set {
	details := fields.NewSet()

	if f, ok := firstOrNothing(e.deps.Patterns.Dates(text)); ok {
		details.PutLeaf("date", f)
	}
	if m := reClockTime.FindStringSubmatchIndex(text); m != nil {
		details.PutLeaf("time", fields.NewSpanned(
			text[m[2]:m[3]], constants.FieldTime, 0.9, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	if m := reReceiptID.FindStringSubmatchIndex(text); m != nil {
		details.PutLeaf("receipt_number", fields.NewSpanned(
			text[m[2]:m[3]], constants.FieldText, 0.9, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	if m := reTerminalID.FindStringSubmatchIndex(text); m != nil {
		details.PutLeaf("terminal_id", fields.NewSpanned(
			text[m[2]:m[3]], constants.FieldText, 0.85, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	return details
}

// items keeps lines shaped like "description  price", skipping totals and
// tender lines and descriptions that are too short or purely numeric.
func (e *ReceiptExtractor) items(text string) []*fields.Set {
	items := make([]*fields.Set, 0)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || containsAny(strings.ToLower(line), itemExclusions) {
			continue
		}

		m := reItemRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(m[1])
		if len(desc) < 2 || digitsOnly(strings.ReplaceAll(desc, " ", "")) {
			continue
		}

		rec := fields.NewSet()
		rec.PutLeaf("description", fields.New(desc, constants.FieldText, 0.7, constants.SourcePattern))
		rec.PutLeaf("total_price", fields.New(m[2], constants.FieldCurrency, 0.7, constants.SourcePattern))
		rec.PutLeaf("quantity", fields.New("1", constants.FieldNumber, 0.5, constants.SourceDefault))
		items = append(items, rec)
	}
	return items
}

func (e *ReceiptExtractor) payment(text string) *fields.Set {
	payment := fields.NewSet()

	for _, method := range paymentMethod {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(method) + `\b`)
		if re.MatchString(text) {
			payment.PutLeaf("method", fields.New(method, constants.FieldText, 0.9, constants.SourcePattern))
			break
		}
	}
	if m := reCardLast4.FindStringSubmatchIndex(text); m != nil {
		payment.PutLeaf("card_last4", fields.NewSpanned(
			text[m[2]:m[3]], constants.FieldText, 0.95, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	if m := reAuthCode.FindStringSubmatchIndex(text); m != nil {
		payment.PutLeaf("auth_code", fields.NewSpanned(
			text[m[2]:m[3]], constants.FieldText, 0.9, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	return payment
}

func (e *ReceiptExtractor) loyalty(text string) *fields.Set {
	loyalty := fields.NewSet()

	if m := reMemberID.FindStringSubmatchIndex(text); m != nil {
		value := strings.TrimSpace(text[m[2]:m[3]])
		loyalty.PutLeaf("member_id", fields.NewSpanned(
			value, constants.FieldText, 0.8, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	if m := rePoints.FindStringSubmatchIndex(text); m != nil {
		loyalty.PutLeaf("points", fields.NewSpanned(
			text[m[2]:m[3]], constants.FieldNumber, 0.85, constants.SourcePattern, m[2], m[3], text[m[2]:m[3]]))
	}
	return loyalty
}

// grandTotal keeps the LAST labeled total on the receipt; earlier matches
// are usually subtotals.
func (e *ReceiptExtractor) grandTotal(text string) *fields.Set {
	totals := fields.NewSet()

	all := reGrandTotal.FindAllStringSubmatchIndex(text, -1)
	if len(all) == 0 {
		return totals
	}
	m := all[len(all)-1]
	raw := text[m[2]:m[3]]
	var value any = raw
	if parsed, err := strconv.ParseFloat(moneyCleaner.Replace(raw), 64); err == nil {
		value = parsed
	}
	totals.PutLeaf("total_amount", fields.NewSpanned(value, constants.FieldCurrency, 0.95, constants.SourcePattern, m[2], m[3], raw))
	return totals
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
