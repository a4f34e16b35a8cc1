package validate

import (
	"github.com/garyjia/invoice-qc/internal/models"
	"go.uber.org/zap"
)

// Engine runs the full validation pipeline over a materialized batch:
// per-invoice rules, the batch-global duplicate pass, then aggregation.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a validation engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// ValidateBatch validates every invoice independently, applies the
// duplicate-detection pass over the whole batch, and returns the final
// results together with their summary. Results keep input order.
func (e *Engine) ValidateBatch(invoices []models.Invoice) ([]models.ValidationResult, models.Summary) {
	results := make([]models.ValidationResult, 0, len(invoices))
	for i := range invoices {
		results = append(results, ValidateInvoice(&invoices[i]))
	}

	results = ApplyDuplicateFlags(invoices, results)
	summary := Summarize(results)

	e.logger.Info("Validation run finished",
		zap.Int("total", summary.TotalInvoices),
		zap.Int("valid", summary.ValidInvoices),
		zap.Int("invalid", summary.InvalidInvoices))

	return results, summary
}
