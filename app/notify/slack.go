package notify

import (
	"errors"
	"fmt"
	"log/slog"
)

type slackNotifier struct {
	webhookURL string
}

func newSlackNotifier(webhookURL string) (Notifier, error) {
	if webhookURL == "" {
		return nil, errors.New("missing webhook URL")
	}
	return &slackNotifier{webhookURL: webhookURL}, nil
}

func (n *slackNotifier) Name() string { return "slack" }

func (n *slackNotifier) Send(title, message, url, category string) bool {
	header := fmt.Sprintf("%s %s: %s", categoryEmoji(category), category, truncate(title, 70))

	payload := map[string]any{
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{"type": "plain_text", "text": header, "emoji": true},
			},
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": message},
			},
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("<%s|Read full story>", url)},
			},
			{"type": "divider"},
		},
	}

	if err := postJSON(n.webhookURL, payload, nil); err != nil {
		slog.Error("Failed to send Slack notification", "title", title, "error", err)
		return false
	}

	slog.Info("Slack notification sent", "title", title)
	return true
}
