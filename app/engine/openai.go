package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

type openAIEngine struct {
	client   *openai.Client
	model    string
	language string
}

func newOpenAIEngine(cfg Config) (Summarizer, error) {
	if cfg.OpenAIKey == "" {
		return nil, errors.New("openai engine requires an API key")
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBase != "" {
		clientCfg.BaseURL = cfg.OpenAIBase
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &openAIEngine{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: cfg.Language,
	}, nil
}

func (e *openAIEngine) Summarize(ctx context.Context, text string) (string, error) {
	return e.complete(ctx, summarizePrompt(text))
}

func (e *openAIEngine) Digest(ctx context.Context, itemsText string) (string, error) {
	return e.complete(ctx, digestPrompt(itemsText, e.language))
}

func (e *openAIEngine) complete(ctx context.Context, userPrompt string) (string, error) {
	slog.Debug("Requesting completion", "engine", "openai", "model", e.model)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(e.language)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
