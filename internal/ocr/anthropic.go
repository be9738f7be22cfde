package ocr

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/summons-enricher/internal/config"
	"github.com/sells-group/summons-enricher/pkg/anthropic"
)

// AnthropicModel sends the document to Claude as a PDF document block or
// an inline image.
type AnthropicModel struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicModel creates an AnthropicModel.
func NewAnthropicModel(client anthropic.Client, model string, cfg config.ModelConfig) *AnthropicModel {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AnthropicModel{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate implements Model.
func (m *AnthropicModel) Generate(ctx context.Context, prompt string, document []byte, mimeType string) (string, error) {
	temp := m.temperature
	resp, err := m.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       m.model,
		MaxTokens:   m.maxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{{
			Role:        "user",
			Content:     prompt,
			Attachments: []anthropic.Attachment{{MediaType: mimeType, Data: document}},
		}},
	})
	if err != nil {
		return "", eris.Wrap(err, "ocr: anthropic generate")
	}
	resp.Usage.LogCost(m.model, "ocr")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.Errorf("ocr: anthropic returned no text (stop_reason=%s)", resp.StopReason)
	}
	return text, nil
}
