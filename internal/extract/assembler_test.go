package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockTextReader mocks the TextReader interface
type MockTextReader struct {
	mock.Mock
}

func (m *MockTextReader) ExtractText(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func TestAssembler_Assemble(t *testing.T) {
	assembler := NewAssembler(new(MockTextReader), nil, zap.NewNop())

	inv := assembler.Assemble(context.Background(), sampleOrderText, "order.pdf")

	assert.False(t, inv.ExtractionFailed)
	assert.Equal(t, "order.pdf", inv.SourceFile)
	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "34343", *inv.InvoiceNumber)
	require.NotNil(t, inv.Currency)
	assert.Equal(t, "EUR", *inv.Currency)
}

func TestAssembler_ExtractBatch_FailedDocumentDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	reader := new(MockTextReader)
	reader.On("ExtractText", filepath.Join(dir, "a.pdf")).Return(sampleOrderText, nil)
	reader.On("ExtractText", filepath.Join(dir, "b.pdf")).Return("", errors.New("corrupt file"))

	assembler := NewAssembler(reader, nil, zap.NewNop())
	invoices, err := assembler.ExtractBatch(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, invoices, 2) // non-PDF file skipped

	assert.False(t, invoices[0].ExtractionFailed)
	assert.Equal(t, "a.pdf", invoices[0].SourceFile)

	// the unreadable document is carried as data, all fields absent
	failed := invoices[1]
	assert.True(t, failed.ExtractionFailed)
	assert.Equal(t, "b.pdf", failed.SourceFile)
	assert.Nil(t, failed.InvoiceNumber)
	assert.Nil(t, failed.Currency)
	assert.Nil(t, failed.GrossTotal)
	assert.Empty(t, failed.LineItems)

	reader.AssertExpectations(t)
}

func TestAssembler_ExtractBatch_MissingDir(t *testing.T) {
	assembler := NewAssembler(new(MockTextReader), nil, zap.NewNop())
	_, err := assembler.ExtractBatch(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

// MockFallback mocks the FallbackExtractor interface
type MockFallback struct {
	mock.Mock
}

func (m *MockFallback) ExtractFields(ctx context.Context, text string) (FieldSet, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(FieldSet), args.Error(1)
}

func TestAssembler_FallbackUsedWhenNoInvoiceNumber(t *testing.T) {
	number := "INV-999"
	fallback := new(MockFallback)
	fallback.On("ExtractFields", mock.Anything, "unstructured text").
		Return(FieldSet{InvoiceNumber: &number}, nil)

	assembler := NewAssembler(new(MockTextReader), fallback, zap.NewNop())
	inv := assembler.Assemble(context.Background(), "unstructured text", "doc.pdf")

	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "INV-999", *inv.InvoiceNumber)
	fallback.AssertExpectations(t)
}

func TestAssembler_FallbackNotUsedWhenPatternsSucceed(t *testing.T) {
	fallback := new(MockFallback)

	assembler := NewAssembler(new(MockTextReader), fallback, zap.NewNop())
	inv := assembler.Assemble(context.Background(), sampleOrderText, "doc.pdf")

	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "34343", *inv.InvoiceNumber)
	fallback.AssertNotCalled(t, "ExtractFields", mock.Anything, mock.Anything)
}
