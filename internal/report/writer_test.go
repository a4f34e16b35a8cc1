package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garyjia/invoice-qc/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	rep := &models.Report{
		Summary: models.Summary{
			TotalInvoices:   2,
			ValidInvoices:   1,
			InvalidInvoices: 1,
			ErrorCounts:     map[string]int{"missing_field: currency": 2},
		},
		Results: []models.ValidationResult{
			{InvoiceID: "INV-1", IsValid: true, Errors: []string{}},
			{InvoiceID: "b.pdf", IsValid: false, Errors: []string{"missing_field: currency", "missing_field: currency"}},
		},
	}

	require.NoError(t, WriteJSON(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed models.Report
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, rep.Summary, parsed.Summary)
	assert.Equal(t, rep.Results, parsed.Results)
}

func TestInvoiceJSON_AbsentFieldsAreNull(t *testing.T) {
	inv := models.Invoice{
		InvoiceNumber: models.String("INV-1"),
		SourceFile:    "a.pdf",
	}
	data, err := json.Marshal(inv)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"invoice_number":"INV-1"`)
	assert.Contains(t, s, `"seller_name":null`)
	assert.Contains(t, s, `"gross_total":null`)
	assert.NotContains(t, s, `"seller_name":""`)
}

func TestWriteAndReadInvoicesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.json")
	invoices := []models.Invoice{
		{InvoiceNumber: models.String("INV-1"), SourceFile: "a.pdf"},
		{SourceFile: "b.pdf", ExtractionFailed: true},
	}

	require.NoError(t, WriteInvoicesJSON(path, invoices))

	parsed, err := ReadInvoicesJSON(path)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "INV-1", models.StringValue(parsed[0].InvoiceNumber))
	assert.True(t, parsed[1].ExtractionFailed)
	assert.Nil(t, parsed[1].InvoiceNumber)
}

func TestPrintSummary_ListsTopErrors(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, models.Summary{
		TotalInvoices:   3,
		ValidInvoices:   1,
		InvalidInvoices: 2,
		ErrorCounts: map[string]int{
			"missing_field: currency":               3,
			"business_rule_failed: totals_mismatch": 1,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Total invoices : 3")
	assert.Contains(t, out, "Invalid invoices : 2")
	assert.Contains(t, out, "missing_field: currency: 3")
	// most frequent error first
	assert.Less(t,
		strings.Index(out, "missing_field: currency"),
		strings.Index(out, "business_rule_failed: totals_mismatch"))
}

func TestPrintSummary_NoErrors(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, models.Summary{TotalInvoices: 1, ValidInvoices: 1})
	assert.NotContains(t, buf.String(), "Top error types")
}
