package http

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/garyjia/invoice-qc/internal/extract"
	"github.com/garyjia/invoice-qc/internal/models"
	"github.com/garyjia/invoice-qc/internal/validate"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the extraction and validation endpoints.
type Handler struct {
	assembler *extract.Assembler
	engine    *validate.Engine
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(assembler *extract.Assembler, engine *validate.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		assembler: assembler,
		engine:    engine,
		logger:    logger,
	}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "invoice-qc",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// ValidateJSON validates a list of invoice objects already in JSON form.
func (h *Handler) ValidateJSON(c *gin.Context) {
	var invoices []models.Invoice
	if err := c.ShouldBindJSON(&invoices); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: expected a JSON array of invoices"})
		return
	}

	results, summary := h.engine.ValidateBatch(invoices)
	c.JSON(http.StatusOK, models.Report{Summary: summary, Results: results})
}

// ExtractAndValidate accepts uploaded PDFs, extracts invoices from them and
// validates the resulting batch.
func (h *Handler) ExtractAndValidate(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	tmpDir, err := os.MkdirTemp("", "invoiceqc-upload-*")
	if err != nil {
		h.logger.Error("Failed to create upload directory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage uploads"})
		return
	}
	defer os.RemoveAll(tmpDir)

	for _, file := range files {
		dest := filepath.Join(tmpDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dest); err != nil {
			h.logger.Error("Failed to save uploaded file",
				zap.String("filename", file.Filename),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage uploads"})
			return
		}
	}

	invoices, err := h.assembler.ExtractBatch(c.Request.Context(), tmpDir)
	if err != nil {
		h.logger.Error("Batch extraction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
		return
	}

	results, summary := h.engine.ValidateBatch(invoices)
	c.JSON(http.StatusOK, gin.H{
		"extracted_invoices": invoices,
		"summary":            summary,
		"results":            results,
	})
}
