package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garyjia/invoice-qc/internal/models"
	"github.com/garyjia/invoice-qc/internal/validate"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(nil, validate.NewEngine(zap.NewNop()), zap.NewNop())

	router := gin.New()
	router.GET("/health", handler.Health)
	router.POST("/validate-json", handler.ValidateJSON)
	return router
}

func TestHandler_Health(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandler_ValidateJSON(t *testing.T) {
	router := newTestRouter()

	invoices := []models.Invoice{
		{
			InvoiceNumber: models.String("INV-1"),
			InvoiceDate:   models.String("2024-01-10"),
			SellerName:    models.String("Seller Ltd"),
			BuyerName:     models.String("Buyer Ltd"),
			Currency:      models.String("EUR"),
			NetTotal:      models.Float64(100),
			TaxAmount:     models.Float64(19),
			GrossTotal:    models.Float64(119),
			SourceFile:    "a.pdf",
		},
		{SourceFile: "b.pdf", ExtractionFailed: true},
	}
	body, err := json.Marshal(invoices)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/validate-json", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var rep models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, 2, rep.Summary.TotalInvoices)
	assert.Equal(t, 1, rep.Summary.ValidInvoices)
	assert.Equal(t, 1, rep.Summary.InvalidInvoices)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, "INV-1", rep.Results[0].InvoiceID)
	assert.Equal(t, "b.pdf", rep.Results[1].InvoiceID)
}

func TestHandler_ValidateJSON_BadBody(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/validate-json", bytes.NewReader([]byte(`{"not":"an array"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
