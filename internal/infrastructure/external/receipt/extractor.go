package receipt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// Extractor pulls structured fields out of receipt uploads with the OpenAI
// vision API. It is a collaborator feeding createExpense input; nothing in
// the workflow engine depends on its output being right.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates a new receipt extractor
func NewExtractor(apiKey, model string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

const extractionPrompt = `Extract the following fields from this receipt and return ONLY a JSON object:
{
  "merchant": "<merchant name or empty string>",
  "date": "<receipt date as YYYY-MM-DD or empty string>",
  "amount": "<total amount as a plain decimal string, no currency symbol>",
  "tax_lines": ["<each tax line as printed>"],
  "confidences": {"merchant": <0..1>, "amount": <0..1>, "date": <0..1>}
}
Use empty strings and 0 confidences for fields you cannot read.`

// Extract reads a receipt file (pdf, jpg, or png) and returns the extracted
// fields.
func (e *Extractor) Extract(ctx context.Context, filePath string) (*entity.ExtractedFields, error) {
	e.logger.Info("Extracting receipt fields", zap.String("path", filePath))

	images, err := pagesAsJPEG(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare receipt: %w", err)
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img),
			},
		})
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert at reading expense receipts. Extract structured data from receipt images.",
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("Vision extraction failed", zap.Error(err))
		return nil, fmt.Errorf("failed to extract receipt fields: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from vision model")
	}

	var fields entity.ExtractedFields
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		e.logger.Error("Failed to parse extraction result",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}

	e.logger.Info("Receipt fields extracted",
		zap.String("merchant", fields.Merchant),
		zap.String("amount", fields.Amount))

	return &fields, nil
}

func decodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	return img, nil
}

var _ port.ReceiptExtractor = (*Extractor)(nil)
