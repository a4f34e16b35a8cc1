package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/garyjia/invoice-qc/internal/models"
)

// WriteJSON serializes the report to path, creating parent directories as
// needed. The report is written in both the all-valid and has-invalid cases.
func WriteJSON(path string, rep *models.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteInvoicesJSON serializes a batch of extracted invoices to path.
func WriteInvoicesJSON(path string, invoices []models.Invoice) error {
	data, err := json.MarshalIndent(invoices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal invoices: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write invoices: %w", err)
	}
	return nil
}

// ReadInvoicesJSON loads a previously extracted invoice batch.
func ReadInvoicesJSON(path string) ([]models.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoices file: %w", err)
	}
	var invoices []models.Invoice
	if err := json.Unmarshal(data, &invoices); err != nil {
		return nil, fmt.Errorf("failed to parse invoices file: %w", err)
	}
	return invoices, nil
}

// PrintSummary writes a human-readable run summary, listing the ten most
// frequent error types.
func PrintSummary(w io.Writer, summary models.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validation Summary")
	fmt.Fprintln(w, "-------------------")
	fmt.Fprintf(w, "Total invoices : %d\n", summary.TotalInvoices)
	fmt.Fprintf(w, "Valid invoices : %d\n", summary.ValidInvoices)
	fmt.Fprintf(w, "Invalid invoices : %d\n", summary.InvalidInvoices)

	if len(summary.ErrorCounts) == 0 {
		return
	}

	type errCount struct {
		code  string
		count int
	}
	counts := make([]errCount, 0, len(summary.ErrorCounts))
	for code, count := range summary.ErrorCounts {
		counts = append(counts, errCount{code, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].code < counts[j].code
	})
	if len(counts) > 10 {
		counts = counts[:10]
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top error types:")
	for _, c := range counts {
		fmt.Fprintf(w, "  %s: %d\n", c.code, c.count)
	}
}
