package validate

import "github.com/garyjia/invoice-qc/internal/models"

// ErrDuplicateInvoice is the error code appended by the duplicate pass.
const ErrDuplicateInvoice = "anomaly:duplicate_invoice"

// duplicateKey groups repeated submissions; absent fields default to "".
type duplicateKey struct {
	invoiceNumber string
	sellerName    string
	invoiceDate   string
}

// ApplyDuplicateFlags runs the batch-global duplicate pass. It builds an
// immutable grouping index over all invoices, then returns a new result
// slice with the duplicate error appended where the group condition holds;
// prior errors are preserved, never cleared.
//
// Results are matched by invoice number equality against their invoice IDs.
// A duplicate group keyed on an empty invoice number can therefore never
// flag any result: invoice_id already fell back to the source file or the
// unknown sentinel. Known limitation, kept for parity with the original
// behavior.
func ApplyDuplicateFlags(invoices []models.Invoice, results []models.ValidationResult) []models.ValidationResult {
	counts := make(map[duplicateKey]int, len(invoices))
	for i := range invoices {
		counts[keyOf(&invoices[i])]++
	}

	flagged := make([]models.ValidationResult, len(results))
	copy(flagged, results)

	for key, n := range counts {
		if n < 2 {
			continue
		}
		if key.invoiceNumber == "" && key.sellerName == "" && key.invoiceDate == "" {
			continue
		}
		if key.invoiceNumber == "" {
			continue
		}
		for i := range flagged {
			if flagged[i].InvoiceID == key.invoiceNumber {
				errs := make([]string, 0, len(flagged[i].Errors)+1)
				errs = append(errs, flagged[i].Errors...)
				flagged[i].Errors = append(errs, ErrDuplicateInvoice)
				flagged[i].IsValid = false
			}
		}
	}

	return flagged
}

func keyOf(inv *models.Invoice) duplicateKey {
	return duplicateKey{
		invoiceNumber: models.StringValue(inv.InvoiceNumber),
		sellerName:    models.StringValue(inv.SellerName),
		invoiceDate:   models.StringValue(inv.InvoiceDate),
	}
}
