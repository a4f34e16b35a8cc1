package extract

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/garyjia/invoice-qc/internal/models"
	"go.uber.org/zap"
)

// TextReader yields the plain text of a document, one page concatenated after
// another. Any error is opaque to the pipeline and treated as "could not
// extract".
type TextReader interface {
	ExtractText(path string) (string, error)
}

// FallbackExtractor fills the field set when the pattern heuristics recover
// no invoice number. Implemented by the AI extractor; optional.
type FallbackExtractor interface {
	ExtractFields(ctx context.Context, text string) (FieldSet, error)
}

// Assembler combines field and line-item extraction into invoice records.
type Assembler struct {
	reader   TextReader
	fallback FallbackExtractor
	logger   *zap.Logger
}

// NewAssembler creates an assembler. fallback may be nil.
func NewAssembler(reader TextReader, fallback FallbackExtractor, logger *zap.Logger) *Assembler {
	return &Assembler{
		reader:   reader,
		fallback: fallback,
		logger:   logger,
	}
}

// Assemble builds one invoice record from a document's text.
func (a *Assembler) Assemble(ctx context.Context, text, sourceID string) models.Invoice {
	fields := ExtractFields(text)

	if fields.InvoiceNumber == nil && a.fallback != nil {
		a.logger.Info("Pattern heuristics found no invoice number, trying fallback extractor",
			zap.String("source", sourceID))
		if aiFields, err := a.fallback.ExtractFields(ctx, text); err != nil {
			a.logger.Warn("Fallback extraction failed", zap.String("source", sourceID), zap.Error(err))
		} else {
			fields = aiFields
		}
	}

	return models.Invoice{
		InvoiceNumber:    fields.InvoiceNumber,
		InvoiceDate:      fields.InvoiceDate,
		DueDate:          fields.DueDate,
		SellerName:       fields.SellerName,
		SellerTaxID:      fields.SellerTaxID,
		BuyerName:        fields.BuyerName,
		BuyerTaxID:       fields.BuyerTaxID,
		Currency:         fields.Currency,
		NetTotal:         fields.NetTotal,
		TaxAmount:        fields.TaxAmount,
		GrossTotal:       fields.GrossTotal,
		LineItems:        ExtractLineItems(text),
		SourceFile:       sourceID,
		ExtractionFailed: false,
	}
}

// failedInvoice models an unreadable document as data: every field absent,
// the source identifier preserved, so one bad document never blocks a batch.
func failedInvoice(sourceID string) models.Invoice {
	return models.Invoice{
		SourceFile:       sourceID,
		ExtractionFailed: true,
	}
}

// ExtractBatch reads every PDF in dir and returns one invoice per document.
// Documents whose text cannot be obtained are carried as extraction-failed
// records rather than aborting the batch.
func (a *Assembler) ExtractBatch(ctx context.Context, dir string) ([]models.Invoice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	invoices := make([]models.Invoice, 0, len(names))
	for _, name := range names {
		text, err := a.reader.ExtractText(filepath.Join(dir, name))
		if err != nil {
			a.logger.Warn("Failed to extract text from document",
				zap.String("source", name),
				zap.Error(err))
			invoices = append(invoices, failedInvoice(name))
			continue
		}
		invoices = append(invoices, a.Assemble(ctx, text, name))
	}

	a.logger.Info("Batch extraction finished",
		zap.String("dir", dir),
		zap.Int("invoice_count", len(invoices)))
	return invoices, nil
}
