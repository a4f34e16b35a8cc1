package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/garyjia/invoice-qc/internal/models"
)

// requiredFields are checked for presence, in this order.
var requiredFields = []struct {
	name    string
	present func(inv *models.Invoice) bool
}{
	{"invoice_number", func(inv *models.Invoice) bool { return models.StringValue(inv.InvoiceNumber) != "" }},
	{"invoice_date", func(inv *models.Invoice) bool { return models.StringValue(inv.InvoiceDate) != "" }},
	{"seller_name", func(inv *models.Invoice) bool { return models.StringValue(inv.SellerName) != "" }},
	{"buyer_name", func(inv *models.Invoice) bool { return models.StringValue(inv.BuyerName) != "" }},
	{"currency", func(inv *models.Invoice) bool { return models.StringValue(inv.Currency) != "" }},
	{"gross_total", func(inv *models.Invoice) bool { return inv.GrossTotal != nil }},
}

var allowedCurrencies = map[string]bool{
	"INR": true,
	"EUR": true,
	"USD": true,
	"GBP": true,
	"CHF": true,
	"JPY": true,
}

// dateFormats are tried in order; first that parses wins. Non-padded layouts
// accept both "9.1.2024" and "09.01.2024".
var dateFormats = []string{
	"2006-1-2",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006/1/2",
}

var (
	dateRangeMin = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	dateRangeMax = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// parseDate tries the accepted formats in order; nil when none matches.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, value); err == nil {
			return &d
		}
	}
	return nil
}

// approxEqual compares two amounts within tolerance
// max(0.01, 0.01 * max(|a|, |b|)).
func approxEqual(a, b float64) bool {
	tol := math.Max(0.01, 0.01*math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tol
}

// ValidateInvoice applies every per-invoice rule unconditionally; violations
// accumulate, they never short-circuit and never raise.
func ValidateInvoice(inv *models.Invoice) models.ValidationResult {
	errors := []string{}

	for _, f := range requiredFields {
		if !f.present(inv) {
			errors = append(errors, fmt.Sprintf("missing_field: %s", f.name))
		}
	}

	invDateRaw := models.StringValue(inv.InvoiceDate)
	invDate := parseDate(invDateRaw)
	if invDateRaw != "" && invDate == nil {
		errors = append(errors, "invalid_format: invoice_date")
	} else if invDate != nil && (invDate.Before(dateRangeMin) || invDate.After(dateRangeMax)) {
		errors = append(errors, "out_of_range: invoice_date")
	}

	dueDateRaw := models.StringValue(inv.DueDate)
	dueDate := parseDate(dueDateRaw)
	if dueDateRaw != "" && dueDate == nil {
		errors = append(errors, "invalid_format: due_date")
	} else if dueDate != nil && (dueDate.Before(dateRangeMin) || dueDate.After(dateRangeMax)) {
		errors = append(errors, "out_of_range: due_date")
	}

	// The required-field loop already reports an absent currency; this rule
	// fires again on absence. Rules do not deduplicate across each other.
	if currency := models.StringValue(inv.Currency); currency != "" {
		if !allowedCurrencies[strings.ToUpper(currency)] {
			errors = append(errors, "invalid_value: currency")
		}
	} else {
		errors = append(errors, "missing_field: currency")
	}

	for _, amt := range []struct {
		name  string
		value *float64
	}{
		{"net_total", inv.NetTotal},
		{"tax_amount", inv.TaxAmount},
		{"gross_total", inv.GrossTotal},
	} {
		if amt.value != nil && *amt.value < 0 {
			errors = append(errors, fmt.Sprintf("anomaly:negative_%s", amt.name))
		}
	}

	if inv.NetTotal != nil && inv.TaxAmount != nil && inv.GrossTotal != nil {
		if !approxEqual(*inv.NetTotal+*inv.TaxAmount, *inv.GrossTotal) {
			errors = append(errors, "business_rule_failed: totals_mismatch")
		}
	}

	var lineSum float64
	anyLineTotal := false
	for _, li := range inv.LineItems {
		if li.LineTotal != nil {
			anyLineTotal = true
			lineSum += *li.LineTotal
		}
	}
	if anyLineTotal && inv.NetTotal != nil {
		if !approxEqual(lineSum, *inv.NetTotal) {
			errors = append(errors, "business_rule_failed: line_items_sum_mismatch")
		}
	}

	if invDate != nil && dueDate != nil && dueDate.Before(*invDate) {
		errors = append(errors, "business_rule_failed: due_before_invoice_date")
	}

	return models.ValidationResult{
		InvoiceID: invoiceID(inv),
		IsValid:   len(errors) == 0,
		Errors:    errors,
	}
}

// invoiceID falls back from invoice number to source file to a sentinel.
func invoiceID(inv *models.Invoice) string {
	if n := models.StringValue(inv.InvoiceNumber); n != "" {
		return n
	}
	if inv.SourceFile != "" {
		return inv.SourceFile
	}
	return models.UnknownInvoiceID
}
