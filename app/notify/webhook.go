package notify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// webhookNotifier posts a plain JSON payload to an arbitrary endpoint,
// optionally signing the body with HMAC-SHA256 so receivers can verify the
// sender.
type webhookNotifier struct {
	webhookURL string
	secret     string
}

func newWebhookNotifier(webhookURL, secret string) (Notifier, error) {
	if webhookURL == "" {
		return nil, errors.New("missing webhook URL")
	}
	return &webhookNotifier{webhookURL: webhookURL, secret: secret}, nil
}

func (n *webhookNotifier) Name() string { return "webhook" }

type webhookPayload struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	URL       string `json:"url"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
}

func (n *webhookNotifier) Send(title, message, url, category string) bool {
	payload := webhookPayload{
		Title:     title,
		Message:   message,
		URL:       url,
		Category:  category,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var headers map[string]string
	if n.secret != "" {
		body, err := json.Marshal(payload)
		if err != nil {
			slog.Error("Failed to encode webhook payload", "title", title, "error", err)
			return false
		}
		headers = map[string]string{"X-Webhook-Signature": "sha256=" + Sign(n.secret, body)}
	}

	if err := postJSON(n.webhookURL, payload, headers); err != nil {
		slog.Error("Failed to send webhook notification", "title", title, "error", err)
		return false
	}

	slog.Info("Webhook notification sent", "title", title)
	return true
}

// Sign computes the hex HMAC-SHA256 of body under secret. Exported so
// webhook receivers can verify signatures with the same primitive.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
