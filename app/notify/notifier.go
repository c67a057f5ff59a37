package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Notifier delivers a single notification to one channel. Send reports
// success as a boolean so callers can count delivery outcomes across
// channels without unwrapping channel-specific errors.
type Notifier interface {
	Name() string
	Send(title, message, url, category string) bool
}

// Config carries the per-channel credentials. Only the fields for the
// enabled channels are required.
type Config struct {
	SlackWebhookURL      string
	DiscordWebhookURL    string
	MattermostWebhookURL string
	TeamsWebhookURL      string
	WebhookURL           string
	WebhookSecret        string
	TelegramToken        string
	TelegramChatID       int64
}

// NewChannels builds a notifier per enabled channel name. A channel whose
// credentials are missing is a configuration error reported here, before
// any delivery is attempted.
func NewChannels(names []string, cfg Config) ([]Notifier, error) {
	notifiers := make([]Notifier, 0, len(names))
	for _, name := range names {
		var (
			n   Notifier
			err error
		)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "slack":
			n, err = newSlackNotifier(cfg.SlackWebhookURL)
		case "discord":
			n, err = newDiscordNotifier(cfg.DiscordWebhookURL)
		case "mattermost":
			n, err = newMattermostNotifier(cfg.MattermostWebhookURL)
		case "teams":
			n, err = newTeamsNotifier(cfg.TeamsWebhookURL)
		case "webhook":
			n, err = newWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret)
		case "telegram":
			n, err = newTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		default:
			return nil, fmt.Errorf("unknown notification channel %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s channel: %w", name, err)
		}
		notifiers = append(notifiers, n)
	}
	return notifiers, nil
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func postJSON(url string, payload any, headers map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return nil
}

// categoryEmoji maps a category name onto a marker used by the chat-style
// channels.
func categoryEmoji(category string) string {
	cat := strings.ToLower(category)
	switch {
	case strings.Contains(cat, "critical"):
		return "\U0001F6A8"
	case strings.Contains(cat, "security"):
		return "\U0001F6E1️"
	case strings.Contains(cat, "database"):
		return "\U0001F5C4️"
	case strings.Contains(cat, "compute"), strings.Contains(cat, "serverless"):
		return "⚡"
	case strings.Contains(cat, "container"):
		return "\U0001F4E6"
	case strings.Contains(cat, "ai"), strings.Contains(cat, "machine learning"):
		return "\U0001F916"
	case strings.Contains(cat, "cost"):
		return "\U0001F4B0"
	case strings.Contains(cat, "architecture"):
		return "\U0001F3D7️"
	default:
		return "\U0001F4E2"
	}
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
