package models

// Invoice holds the fields recovered from one source document.
// Optional fields are pointers so that "never found" serializes as null,
// which keeps it distinct from an empty string that was actually present.
type Invoice struct {
	InvoiceNumber    *string    `json:"invoice_number"`
	InvoiceDate      *string    `json:"invoice_date"` // raw as captured, parsed at validation time
	DueDate          *string    `json:"due_date"`
	SellerName       *string    `json:"seller_name"`
	SellerTaxID      *string    `json:"seller_tax_id"`
	BuyerName        *string    `json:"buyer_name"`
	BuyerTaxID       *string    `json:"buyer_tax_id"`
	Currency         *string    `json:"currency"`
	NetTotal         *float64   `json:"net_total"`
	TaxAmount        *float64   `json:"tax_amount"`
	GrossTotal       *float64   `json:"gross_total"`
	LineItems        []LineItem `json:"line_items"`
	SourceFile       string     `json:"source_file"`
	ExtractionFailed bool       `json:"extraction_failed"`
}

// LineItem is one row of an invoice's itemized section. LineTotal is the
// only field a row is guaranteed to carry; quantity and unit price are
// positionally inferred and may be absent.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
}

// ValidationResult accumulates rule violations for a single invoice.
// Errors is append-only: the duplicate-detection pass may add to it and
// flip IsValid, but never clears prior entries.
type ValidationResult struct {
	InvoiceID string   `json:"invoice_id"`
	IsValid   bool     `json:"is_valid"`
	Errors    []string `json:"errors"`
}

// Summary aggregates a whole validation run.
type Summary struct {
	TotalInvoices   int            `json:"total_invoices"`
	ValidInvoices   int            `json:"valid_invoices"`
	InvalidInvoices int            `json:"invalid_invoices"`
	ErrorCounts     map[string]int `json:"error_counts"`
}

// Report is the serialized output of a validation run.
type Report struct {
	Summary Summary            `json:"summary"`
	Results []ValidationResult `json:"results"`
}

// UnknownInvoiceID is the sentinel used when neither an invoice number nor
// a source file identifier is available.
const UnknownInvoiceID = "<unknown>"

// StringValue returns the dereferenced string or "" when absent.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// String returns a pointer to s, for building optional fields.
func String(s string) *string { return &s }

// Float64 returns a pointer to f, for building optional fields.
func Float64(f float64) *float64 { return &f }
