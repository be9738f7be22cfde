package ocr

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sells-group/summons-enricher/internal/config"
)

// GeminiModel sends the document to Gemini as inline bytes.
type GeminiModel struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

// NewGeminiModel creates a GeminiModel against the Gemini API backend.
func NewGeminiModel(ctx context.Context, gcfg config.GeminiConfig, mcfg config.ModelConfig) (*GeminiModel, error) {
	cc := &genai.ClientConfig{
		APIKey:  gcfg.Key,
		Backend: genai.BackendGeminiAPI,
	}
	if gcfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: gcfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "ocr: create gemini client")
	}

	maxTokens := int32(mcfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &GeminiModel{
		client:      client,
		model:       gcfg.Model,
		maxTokens:   maxTokens,
		temperature: float32(mcfg.Temperature),
	}, nil
}

// Generate implements Model.
func (m *GeminiModel) Generate(ctx context.Context, prompt string, document []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: document}},
			genai.NewPartFromText(prompt),
		},
	}}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(m.temperature),
		MaxOutputTokens:  m.maxTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", eris.Wrap(err, "ocr: gemini generate")
	}

	if u := resp.UsageMetadata; u != nil {
		zap.L().Info("cost attribution",
			zap.String("model", m.model),
			zap.String("phase", "ocr"),
			zap.Int32("input_tokens", u.PromptTokenCount),
			zap.Int32("output_tokens", u.CandidatesTokenCount),
		)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("ocr: gemini returned no text")
	}
	return text, nil
}
