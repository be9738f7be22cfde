// Package ocr extracts structured summons fields from a document by asking
// a vision model for a JSON object and validating what comes back.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/summons-enricher/internal/config"
	"github.com/sells-group/summons-enricher/pkg/anthropic"
)

// Model answers a prompt about a binary document with free text.
type Model interface {
	Generate(ctx context.Context, prompt string, document []byte, mimeType string) (string, error)
}

// NewModel creates a Model for the configured provider.
func NewModel(ctx context.Context, cfg *config.Config) (Model, error) {
	switch cfg.Model.Provider {
	case "anthropic", "":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("ocr: anthropic provider requires anthropic.key")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.BaseURL)
		return NewAnthropicModel(client, cfg.Anthropic.Model, cfg.Model), nil
	case "gemini":
		if cfg.Gemini.Key == "" {
			return nil, eris.New("ocr: gemini provider requires gemini.key")
		}
		return NewGeminiModel(ctx, cfg.Gemini, cfg.Model)
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Model.Provider)
	}
}
