package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_UnknownEngine(t *testing.T) {
	if _, err := New("bard", Config{}); err == nil {
		t.Error("Expected error for unknown engine")
	}
}

func TestNew_SelectionTimeValidation(t *testing.T) {
	tests := []struct {
		name   string
		engine string
		cfg    Config
	}{
		{"openai without key", "openai", Config{}},
		{"anthropic without key", "anthropic", Config{}},
		{"ollama without host", "ollama", Config{Model: "llama2"}},
		{"ollama without model", "ollama", Config{OllamaHost: "http://localhost:11434"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.engine, tt.cfg); err == nil {
				t.Errorf("Expected selection-time error for %s", tt.name)
			}
		})
	}
}

func TestNew_ValidConfigs(t *testing.T) {
	tests := []struct {
		name   string
		engine string
		cfg    Config
	}{
		{"openai", "openai", Config{OpenAIKey: "sk-test"}},
		{"anthropic", "anthropic", Config{AnthropicKey: "sk-ant-test"}},
		{"ollama", "ollama", Config{OllamaHost: "http://localhost:11434", Model: "llama2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summarizer, err := New(tt.engine, tt.cfg)
			if err != nil {
				t.Fatalf("Expected %s to build, got: %v", tt.name, err)
			}
			if summarizer == nil {
				t.Errorf("Expected a summarizer for %s", tt.name)
			}
		})
	}
}

func newCompletionServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
		}
		if capture != nil {
			json.NewDecoder(r.Body).Decode(capture)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestOpenAIEngine_Summarize(t *testing.T) {
	var request map[string]any
	server := newCompletionServer(t, "the summary", &request)
	defer server.Close()

	summarizer, err := New("openai", Config{
		OpenAIKey:  "sk-test",
		OpenAIBase: server.URL + "/v1",
		Model:      "gpt-4o-mini",
		Language:   "English",
	})
	if err != nil {
		t.Fatal(err)
	}

	summary, err := summarizer.Summarize(context.Background(), "some update text")
	if err != nil {
		t.Fatalf("Expected summarize to succeed, got: %v", err)
	}
	if summary != "the summary" {
		t.Errorf("Expected 'the summary', got %q", summary)
	}

	messages, ok := request["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("Expected system and user messages, got %v", request["messages"])
	}
	user := messages[1].(map[string]any)
	if !strings.Contains(user["content"].(string), "some update text") {
		t.Error("Expected the update text in the user prompt")
	}
}

func TestOpenAIEngine_Digest(t *testing.T) {
	var request map[string]any
	server := newCompletionServer(t, "the digest", &request)
	defer server.Close()

	summarizer, err := New("openai", Config{
		OpenAIKey:  "sk-test",
		OpenAIBase: server.URL + "/v1",
		Model:      "gpt-4o-mini",
		Language:   "English",
	})
	if err != nil {
		t.Fatal(err)
	}

	report, err := summarizer.Digest(context.Background(), "- [Tags] title: summary")
	if err != nil {
		t.Fatalf("Expected digest to succeed, got: %v", err)
	}
	if report != "the digest" {
		t.Errorf("Expected 'the digest', got %q", report)
	}

	messages := request["messages"].([]any)
	user := messages[1].(map[string]any)
	if !strings.Contains(user["content"].(string), "- [Tags] title: summary") {
		t.Error("Expected the items text in the digest prompt")
	}
}

func TestOpenAIEngine_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	summarizer, err := New("openai", Config{OpenAIKey: "sk-test", OpenAIBase: server.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := summarizer.Summarize(context.Background(), "text"); err == nil {
		t.Error("Expected error on server failure")
	}
}

func TestOllamaEngine_UsesOpenAICompatibleEndpoint(t *testing.T) {
	server := newCompletionServer(t, "local summary", nil)
	defer server.Close()

	summarizer, err := New("ollama", Config{OllamaHost: server.URL, Model: "llama2"})
	if err != nil {
		t.Fatal(err)
	}

	summary, err := summarizer.Summarize(context.Background(), "text")
	if err != nil {
		t.Fatalf("Expected summarize via ollama endpoint, got: %v", err)
	}
	if summary != "local summary" {
		t.Errorf("Expected 'local summary', got %q", summary)
	}
}
