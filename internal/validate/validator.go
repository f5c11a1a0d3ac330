package validate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/heuristics"
)

// Key names checked at field level, first tree occurrence each.
var (
	amountKeys = []string{"subtotal", "tax", "total_amount", "discount"}
	emailKeys  = []string{"email"}
	phoneKeys  = []string{"phone", "phone_number"}
	dateKeys   = []string{"date", "invoice_date", "due_date"}
)

// Report is the validation outcome. DocumentValid is the conjunction of
// every field check and logic check, recomputed in full on every run.
type Report struct {
	DocumentValid    bool            `json:"document_valid"`
	FieldValidations map[string]bool `json:"field_validations"`
	LogicErrors      []string        `json:"logic_errors"`
}

type Config struct {
	PhoneRegion string
	Params      heuristics.Params
	Logger      *slog.Logger
}

// Validator is stateless between calls and safe for concurrent use.
type Validator struct {
	region string
	params heuristics.Params
	logger *slog.Logger
}

func NewValidator(cfg Config) *Validator {
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = "US"
	}
	if cfg.Params == (heuristics.Params{}) {
		cfg.Params = heuristics.Defaults()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Validator{region: cfg.PhoneRegion, params: cfg.Params, logger: cfg.Logger}
}

// Validate checks the tree. Findings are extractor consistency problems;
// they are folded into the logic errors and count against validity.
func (v *Validator) Validate(tree *fields.Set, docType constants.DocumentType, findings []string) Report {
	report := Report{
		DocumentValid:    true,
		FieldValidations: make(map[string]bool),
		LogicErrors:      make([]string, 0),
	}
	if tree == nil {
		tree = fields.NewSet()
	}

	record := func(key string, ok bool) {
		report.FieldValidations[key] = ok
		if !ok {
			report.DocumentValid = false
		}
	}

	for _, key := range amountKeys {
		if f, ok := firstLeaf(tree, key); ok {
			record(key, v.ValidAmount(f.Value))
		}
	}
	for _, key := range emailKeys {
		if f, ok := firstLeaf(tree, key); ok {
			record(key, v.ValidEmail(f.ValueString()))
		}
	}
	for _, key := range phoneKeys {
		if f, ok := firstLeaf(tree, key); ok {
			record(key, v.ValidPhone(f.ValueString(), ""))
		}
	}
	for _, key := range dateKeys {
		if f, ok := firstLeaf(tree, key); ok {
			record(key, v.ValidDate(f.ValueString()))
		}
	}

	if docType == constants.Invoice {
		v.checkInvoiceTotals(tree, &report)
		v.checkInvoiceDates(tree, &report)
	}

	for _, finding := range findings {
		report.DocumentValid = false
		report.LogicErrors = append(report.LogicErrors, finding)
	}

	v.logger.Info("validate.done",
		"document_type", docType,
		"document_valid", report.DocumentValid,
		"logic_errors", len(report.LogicErrors))
	return report
}

// checkInvoiceTotals verifies subtotal + tax + shipping - discount against
// the extracted total, within tolerance, when both anchors are present.
func (v *Validator) checkInvoiceTotals(tree *fields.Set, report *Report) {
	subtotal := amountAt(tree, "subtotal")
	total := amountAt(tree, "total_amount")
	if subtotal.Sign() <= 0 || total.Sign() <= 0 {
		return
	}

	calculated := subtotal.
		Add(amountAt(tree, "tax")).
		Add(amountAt(tree, "shipping")).
		Sub(amountAt(tree, "discount"))

	tolerance := decimal.NewFromFloat(v.params.BalanceTolerance)
	if calculated.Sub(total).Abs().GreaterThan(tolerance) {
		report.DocumentValid = false
		report.LogicErrors = append(report.LogicErrors, fmt.Sprintf(
			"Total mismatch: Calculated %s != Extracted %s",
			calculated.StringFixed(2), total.StringFixed(2)))
	}
}

// checkInvoiceDates verifies the due date does not precede the invoice
// date when both parse.
func (v *Validator) checkInvoiceDates(tree *fields.Set, report *Report) {
	invoiceDate, okInv := v.dateAt(tree, "invoice_date")
	dueDate, okDue := v.dateAt(tree, "due_date")
	if !okInv || !okDue {
		return
	}
	if dueDate.Before(invoiceDate) {
		report.DocumentValid = false
		report.LogicErrors = append(report.LogicErrors, fmt.Sprintf(
			"Due Date %s is before Invoice Date %s",
			dueDate.Format("2006-01-02"), invoiceDate.Format("2006-01-02")))
	}
}

func (v *Validator) dateAt(tree *fields.Set, key string) (time.Time, bool) {
	f, ok := firstLeaf(tree, key)
	if !ok || !v.ValidDate(f.ValueString()) {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", f.ValueString())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// amountAt reads a money leaf as a decimal, zero when absent or unreadable.
func amountAt(tree *fields.Set, key string) decimal.Decimal {
	f, ok := firstLeaf(tree, key)
	if !ok {
		return decimal.Zero
	}
	val, ok := amountValue(f.Value)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}

func firstLeaf(tree *fields.Set, key string) (fields.Field, bool) {
	ff := tree.FindLeaf(key)
	if len(ff) == 0 {
		return fields.Field{}, false
	}
	return ff[0], true
}
