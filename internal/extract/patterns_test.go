package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOrderText = `ABC Corporation Bestellung AUFNR34343 im Auftrag von Beispielname Unternehmen
Bestellung AUFNR34343 vom 22.05.2024
Softwareunternehmen · Philipp-Ott-Str. 64, Süd Lenjaberg, SN 48103 Kundenanschrift
Gesamtwert EUR 64,00
MwSt. 19,00% EUR 12,16
Gesamtwert inkl. MwSt. EUR 76,16`

func TestExtractFields_GermanOrderLayout(t *testing.T) {
	fields := ExtractFields(sampleOrderText)

	require.NotNil(t, fields.InvoiceNumber)
	assert.Equal(t, "34343", *fields.InvoiceNumber)

	require.NotNil(t, fields.InvoiceDate)
	assert.Equal(t, "22.05.2024", *fields.InvoiceDate)

	require.NotNil(t, fields.SellerName)
	assert.Equal(t, "ABC Corporation", *fields.SellerName)

	require.NotNil(t, fields.BuyerName)
	assert.Equal(t, "Softwareunternehmen", *fields.BuyerName)

	require.NotNil(t, fields.Currency)
	assert.Equal(t, "EUR", *fields.Currency)

	require.NotNil(t, fields.NetTotal)
	assert.InDelta(t, 64.00, *fields.NetTotal, 0.001)
	require.NotNil(t, fields.TaxAmount)
	assert.InDelta(t, 12.16, *fields.TaxAmount, 0.001)
	require.NotNil(t, fields.GrossTotal)
	assert.InDelta(t, 76.16, *fields.GrossTotal, 0.001)

	assert.Nil(t, fields.DueDate)
	assert.Nil(t, fields.BuyerTaxID)
}

func TestExtractFields_GenericLabels(t *testing.T) {
	text := `Invoice Date: 10/01/2024
Due Date: 20/01/2024
Seller: Seller Ltd
Buyer: Buyer Ltd`

	fields := ExtractFields(text)

	require.NotNil(t, fields.InvoiceDate)
	assert.Equal(t, "10/01/2024", *fields.InvoiceDate)
	require.NotNil(t, fields.DueDate)
	assert.Equal(t, "20/01/2024", *fields.DueDate)
	require.NotNil(t, fields.SellerName)
	assert.Equal(t, "Seller Ltd", *fields.SellerName)
	require.NotNil(t, fields.BuyerName)
	assert.Equal(t, "Buyer Ltd", *fields.BuyerName)
}

func TestExtractFields_EmptyText(t *testing.T) {
	fields := ExtractFields("")

	assert.Nil(t, fields.InvoiceNumber)
	assert.Nil(t, fields.InvoiceDate)
	assert.Nil(t, fields.SellerName)
	assert.Nil(t, fields.Currency)
	assert.Nil(t, fields.GrossTotal)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"already normalized", "118.00", 118.00, true},
		{"european thousands", "1.285,20", 1285.20, true},
		{"comma decimal", "64,00", 64.00, true},
		{"currency glyph", "€ 1.234,56", 1234.56, true},
		{"plain integer", "42", 42, true},
		{"rupee glyph", "₹500", 500, true},
		{"garbage", "abc", 0, false},
		{"empty", "", 0, false},
		{"lone separator", ",", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.0001)
		})
	}
}

func TestInferCurrency(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"explicit code", "Total INR 100", "INR", true},
		{"code beats symbol", "USD amount ₹100", "USD", true},
		{"euro symbol", "betrag 99,00 €", "EUR", true},
		{"dollar symbol", "$12.00 due", "USD", true},
		{"rupee beats euro symbol", "₹100 or €90", "INR", true},
		{"lowercase code ignored", "paid in usd", "", false},
		{"none", "no currency here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferCurrency(tt.text)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
