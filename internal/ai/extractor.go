package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garyjia/invoice-qc/internal/extract"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Extractor recovers invoice fields with a chat completion when the pattern
// heuristics come up empty. It is an optional fallback; the pipeline runs
// fully without it.
type Extractor struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewExtractor creates a new AI field extractor.
func NewExtractor(apiKey, model string, temperature float32, timeout time.Duration, logger *zap.Logger) *Extractor {
	return &Extractor{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// fieldPayload mirrors the JSON object requested from the model. Pointer
// fields keep "not found" distinct from empty values.
type fieldPayload struct {
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	DueDate       *string  `json:"due_date"`
	SellerName    *string  `json:"seller_name"`
	SellerTaxID   *string  `json:"seller_tax_id"`
	BuyerName     *string  `json:"buyer_name"`
	BuyerTaxID    *string  `json:"buyer_tax_id"`
	Currency      *string  `json:"currency"`
	NetTotal      *float64 `json:"net_total"`
	TaxAmount     *float64 `json:"tax_amount"`
	GrossTotal    *float64 `json:"gross_total"`
}

// ExtractFields asks the model for the invoice field set as strict JSON.
func (e *Extractor) ExtractFields(ctx context.Context, text string) (extract.FieldSet, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert in reading invoices. Extract structured data from invoice text. Always respond with valid JSON. Use null for fields that are not present.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: e.buildPrompt(text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("Failed to call OpenAI API", zap.Error(err))
		return extract.FieldSet{}, fmt.Errorf("failed to extract invoice fields: %w", err)
	}

	if len(resp.Choices) == 0 {
		return extract.FieldSet{}, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	var payload fieldPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		e.logger.Error("Failed to parse extraction result",
			zap.Error(err),
			zap.String("content", content))
		return extract.FieldSet{}, fmt.Errorf("failed to parse extraction result: %w", err)
	}

	return extract.FieldSet{
		InvoiceNumber: payload.InvoiceNumber,
		InvoiceDate:   payload.InvoiceDate,
		DueDate:       payload.DueDate,
		SellerName:    payload.SellerName,
		SellerTaxID:   payload.SellerTaxID,
		BuyerName:     payload.BuyerName,
		BuyerTaxID:    payload.BuyerTaxID,
		Currency:      payload.Currency,
		NetTotal:      payload.NetTotal,
		TaxAmount:     payload.TaxAmount,
		GrossTotal:    payload.GrossTotal,
	}, nil
}

func (e *Extractor) buildPrompt(text string) string {
	return fmt.Sprintf(`Extract invoice information from this document text:

%s

Return JSON with the following structure:
{
  "invoice_number": "string or null",
  "invoice_date": "date as written in the document, or null",
  "due_date": "date as written in the document, or null",
  "seller_name": "string or null",
  "seller_tax_id": "string or null",
  "buyer_name": "string or null",
  "buyer_tax_id": "string or null",
  "currency": "3-letter code like EUR or null",
  "net_total": number or null,
  "tax_amount": number or null,
  "gross_total": number or null
}

Extract EXACTLY what you see. Do not guess or make up values. Amounts are plain numbers without currency symbols.`, text)
}
