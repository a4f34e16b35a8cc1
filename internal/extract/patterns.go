package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/garyjia/invoice-qc/internal/models"
)

// FieldSet holds the scalar fields recovered from one document's text.
type FieldSet struct {
	InvoiceNumber *string
	InvoiceDate   *string
	DueDate       *string
	SellerName    *string
	SellerTaxID   *string
	BuyerName     *string
	BuyerTaxID    *string
	Currency      *string
	NetTotal      *float64
	TaxAmount     *float64
	GrossTotal    *float64
}

// Ordered pattern lists per field, first match wins. Each list starts with a
// pattern tuned for the German B2B order layout ("Bestellung AUFNR..."), then
// falls back to generic English invoice labels.
var (
	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Bestellung\s+AUFNR(\S+)`),
		regexp.MustCompile(`(?i)Invoice\s*(No\.?|Number|#)\s*[:\-]?\s*(\S+)`),
	}

	invoiceDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Bestellung\s+AUFNR\S+\s+vom\s+([0-9]{1,2}\.[0-9]{1,2}\.[0-9]{4})`),
		regexp.MustCompile(`(?i)Invoice Date\s*[:\-]?\s*([0-9]{1,2}[./-][0-9]{1,2}[./-][0-9]{2,4})`),
		regexp.MustCompile(`(?i)Dated\s*[:\-]?\s*([0-9]{1,2}[./-][0-9]{1,2}[./-][0-9]{2,4})`),
	}

	dueDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Due Date\s*[:\-]?\s*([0-9]{1,2}[./-][0-9]{1,2}[./-][0-9]{2,4})`),
		regexp.MustCompile(`(?i)Payment Due\s*[:\-]?\s*([0-9]{1,2}[./-][0-9]{1,2}[./-][0-9]{2,4})`),
	}

	// Seller is the text before "Bestellung AUFNR" at the start of a line.
	sellerNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^(.*?)\s+Bestellung\s+AUFNR`),
		regexp.MustCompile(`(?im)Seller\s*[:\-]?\s*(.+)`),
		regexp.MustCompile(`(?im)Supplier\s*[:\-]?\s*(.+)`),
		regexp.MustCompile(`(?im)From\s*[:\-]?\s*(.+)`),
	}

	// Buyer lines look like "Softwareunternehmen · Philipp-Ott-Str. 64, ... Kundenanschrift".
	buyerNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^(.*?)\s+·[^\n]*Kundenanschrift`),
		regexp.MustCompile(`(?im)Buyer\s*[:\-]?\s*(.+)`),
		regexp.MustCompile(`(?im)Customer\s*[:\-]?\s*(.+)`),
		regexp.MustCompile(`(?im)Bill To\s*[:\-]?\s*(.+)`),
		regexp.MustCompile(`(?im)Ship To\s*[:\-]?\s*(.+)`),
	}

	sellerTaxIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(GSTIN|VAT No\.?|Tax ID)\s*[:\-]?\s*([A-Z0-9]+)`),
	}

	netTotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Gesamtwert\s+EUR\s+([0-9\.,]+)`),
		regexp.MustCompile(`(?i)(Net Total|Sub Total|Subtotal)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]+)?)`),
	}

	taxAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)MwSt\.\s*[0-9,]+%\s+EUR\s+([0-9\.,]+)`),
		regexp.MustCompile(`(?i)(Tax|VAT|GST)[^\r\n]*?[:\-]?\s*([0-9,]+(?:\.[0-9]+)?)`),
	}

	grossTotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Gesamtwert inkl\. MwSt\.\s+EUR\s+([0-9\.,]+)`),
		regexp.MustCompile(`(?i)(Grand Total|Total Amount Payable|Invoice Total|Total)\s*[:\-]?\s*([0-9,]+(?:\.[0-9]+)?)`),
	}

	// Explicit ISO-like code anywhere in the text wins over symbols.
	// Deliberately case-sensitive: lowercase "usd" is not a currency code.
	currencyCodePattern = regexp.MustCompile(`\b(INR|EUR|USD|GBP|CHF|JPY)\b`)

	currencyGlyphs = regexp.MustCompile(`[₹$€£]`)
)

// currency symbols checked in priority order when no explicit code is found
var currencySymbols = []struct {
	glyph string
	code  string
}{
	{"₹", "INR"},
	{"€", "EUR"},
	{"$", "USD"},
	{"£", "GBP"},
}

// searchFirst tries patterns in order and returns the first match, using the
// first capturing group when the pattern declares one, else the full match.
func searchFirst(patterns []*regexp.Regexp, text string) *string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return models.String(strings.TrimSpace(m[1]))
		}
		return models.String(strings.TrimSpace(m[0]))
	}
	return nil
}

// ParseAmount normalizes a localized amount string and parses it as a float.
// European convention: when both separators are present, "." is thousands and
// "," is decimal; a lone "," is a decimal separator. Returns nil on any
// failure, never an error.
func ParseAmount(value string) *float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil
	}
	cleaned = currencyGlyphs.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		// 1.285,20 -> 1285.20
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case strings.Contains(cleaned, ","):
		// 64,00 -> 64.00
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return models.Float64(f)
}

// parseAmountPtr is ParseAmount lifted over an optional match.
func parseAmountPtr(value *string) *float64 {
	if value == nil {
		return nil
	}
	return ParseAmount(*value)
}

// InferCurrency resolves the document currency from an explicit code token,
// falling back to a symbol lookup. Returns nil when neither is present.
func InferCurrency(text string) *string {
	if m := currencyCodePattern.FindStringSubmatch(text); m != nil {
		return models.String(m[1])
	}
	for _, sym := range currencySymbols {
		if strings.Contains(text, sym.glyph) {
			return models.String(sym.code)
		}
	}
	return nil
}

// ExtractFields runs the per-field pattern lists over the whole text.
func ExtractFields(text string) FieldSet {
	return FieldSet{
		InvoiceNumber: searchFirst(invoiceNumberPatterns, text),
		InvoiceDate:   searchFirst(invoiceDatePatterns, text),
		DueDate:       searchFirst(dueDatePatterns, text),
		SellerName:    searchFirst(sellerNamePatterns, text),
		SellerTaxID:   searchFirst(sellerTaxIDPatterns, text),
		BuyerName:     searchFirst(buyerNamePatterns, text),
		BuyerTaxID:    nil, // not present in the source corpus
		Currency:      InferCurrency(text),
		NetTotal:      parseAmountPtr(searchFirst(netTotalPatterns, text)),
		TaxAmount:     parseAmountPtr(searchFirst(taxAmountPatterns, text)),
		GrossTotal:    parseAmountPtr(searchFirst(grossTotalPatterns, text)),
	}
}
