package engine

import (
	"context"
	"fmt"
)

// Summarizer produces analyst summaries. Summarize handles a single item's
// text; Digest consolidates a pre-formatted batch of items into one report.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Digest(ctx context.Context, itemsText string) (string, error)
}

// Config carries the credentials and endpoints the engines need. Only the
// fields for the selected engine are required.
type Config struct {
	Model        string
	Language     string
	OpenAIKey    string
	OpenAIBase   string
	AnthropicKey string
	OllamaHost   string
}

// New builds the summarization engine selected by name. Misconfiguration
// such as a missing API key surfaces here, at selection time, not on the
// first summarize call.
func New(name string, cfg Config) (Summarizer, error) {
	switch name {
	case "openai":
		return newOpenAIEngine(cfg)
	case "ollama":
		return newOllamaEngine(cfg)
	case "anthropic":
		return newAnthropicEngine(cfg)
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}
