package validate

import "github.com/garyjia/invoice-qc/internal/models"

// Summarize derives the run summary from the final (post-duplicate-pass)
// result list. Every error occurrence counts, including repeats within one
// invoice.
func Summarize(results []models.ValidationResult) models.Summary {
	summary := models.Summary{
		TotalInvoices: len(results),
		ErrorCounts:   make(map[string]int),
	}

	for _, r := range results {
		if !r.IsValid {
			summary.InvalidInvoices++
		}
		for _, e := range r.Errors {
			summary.ErrorCounts[e]++
		}
	}
	summary.ValidInvoices = summary.TotalInvoices - summary.InvalidInvoices

	return summary
}
