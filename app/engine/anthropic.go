package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

type anthropicEngine struct {
	apiKey   string
	model    string
	language string
}

func newAnthropicEngine(cfg Config) (Summarizer, error) {
	if cfg.AnthropicKey == "" {
		return nil, errors.New("anthropic engine requires an API key")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	return &anthropicEngine{
		apiKey:   cfg.AnthropicKey,
		model:    model,
		language: cfg.Language,
	}, nil
}

func (e *anthropicEngine) Summarize(_ context.Context, text string) (string, error) {
	return e.prompt(summarizePrompt(text))
}

func (e *anthropicEngine) Digest(_ context.Context, itemsText string) (string, error) {
	return e.prompt(digestPrompt(itemsText, e.language))
}

func (e *anthropicEngine) prompt(userPrompt string) (string, error) {
	slog.Debug("Requesting completion", "engine", "anthropic", "model", e.model)

	settings := types.RequestSettings{
		Model:       e.model,
		MaxTokens:   1500,
		Temperature: 0,
	}
	response, err := anthropic.PromptWithSettings(systemPrompt(e.language), userPrompt, "", e.apiKey, settings)
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	if len(response.Content) == 0 {
		return "", errors.New("anthropic returned no content")
	}

	return response.Content[0].Text, nil
}
