package engine

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// newOllamaEngine talks to a local Ollama instance through its
// OpenAI-compatible endpoint, so it reuses the openai engine wholesale.
func newOllamaEngine(cfg Config) (Summarizer, error) {
	if cfg.OllamaHost == "" {
		return nil, errors.New("ollama engine requires a host")
	}
	if cfg.Model == "" {
		return nil, errors.New("ollama engine requires a model")
	}

	clientCfg := openai.DefaultConfig("ollama")
	clientCfg.BaseURL = strings.TrimRight(cfg.OllamaHost, "/") + "/v1"

	return &openAIEngine{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}
