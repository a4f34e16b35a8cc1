package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garyjia/invoice-qc/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelExporter writes a validation report as an Excel workbook with a
// summary sheet and a per-invoice results sheet.
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter.
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export writes the report to outputPath.
func (ex *ExcelExporter) Export(rep *models.Report, outputPath string) error {
	ex.logger.Info("Exporting report to Excel",
		zap.String("path", outputPath),
		zap.Int("result_count", len(rep.Results)))

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	ex.setCell(f, summarySheet, "A1", "Total invoices")
	ex.setCell(f, summarySheet, "B1", rep.Summary.TotalInvoices)
	ex.setCell(f, summarySheet, "A2", "Valid invoices")
	ex.setCell(f, summarySheet, "B2", rep.Summary.ValidInvoices)
	ex.setCell(f, summarySheet, "A3", "Invalid invoices")
	ex.setCell(f, summarySheet, "B3", rep.Summary.InvalidInvoices)

	// Error histogram, most frequent first
	codes := make([]string, 0, len(rep.Summary.ErrorCounts))
	for code := range rep.Summary.ErrorCounts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		ci, cj := rep.Summary.ErrorCounts[codes[i]], rep.Summary.ErrorCounts[codes[j]]
		if ci != cj {
			return ci > cj
		}
		return codes[i] < codes[j]
	})
	ex.setCell(f, summarySheet, "A5", "Error type")
	ex.setCell(f, summarySheet, "B5", "Count")
	for i, code := range codes {
		row := 6 + i
		ex.setCell(f, summarySheet, fmt.Sprintf("A%d", row), code)
		ex.setCell(f, summarySheet, fmt.Sprintf("B%d", row), rep.Summary.ErrorCounts[code])
	}

	const resultsSheet = "Results"
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("failed to create results sheet: %w", err)
	}
	ex.setCell(f, resultsSheet, "A1", "Invoice ID")
	ex.setCell(f, resultsSheet, "B1", "Status")
	ex.setCell(f, resultsSheet, "C1", "Errors")
	for i, r := range rep.Results {
		row := 2 + i
		status := "valid"
		if !r.IsValid {
			status = "invalid"
		}
		ex.setCell(f, resultsSheet, fmt.Sprintf("A%d", row), r.InvoiceID)
		ex.setCell(f, resultsSheet, fmt.Sprintf("B%d", row), status)
		ex.setCell(f, resultsSheet, fmt.Sprintf("C%d", row), strings.Join(r.Errors, ", "))
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// setCell sets a cell value, logging failures instead of aborting the export.
func (ex *ExcelExporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		ex.logger.Warn("Failed to set cell",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
