package notify

import (
	"errors"
	"fmt"
	"log/slog"
)

type mattermostNotifier struct {
	webhookURL string
}

func newMattermostNotifier(webhookURL string) (Notifier, error) {
	if webhookURL == "" {
		return nil, errors.New("missing webhook URL")
	}
	return &mattermostNotifier{webhookURL: webhookURL}, nil
}

func (n *mattermostNotifier) Name() string { return "mattermost" }

func (n *mattermostNotifier) Send(title, message, url, category string) bool {
	text := fmt.Sprintf("%s **%s**: %s\n\n%s\n\n[Read More](%s)",
		categoryEmoji(category), category, title, message, url)

	payload := map[string]any{
		"text":     text,
		"username": "NewsBrief Bot",
	}

	if err := postJSON(n.webhookURL, payload, nil); err != nil {
		slog.Error("Failed to send Mattermost notification", "title", title, "error", err)
		return false
	}

	slog.Info("Mattermost notification sent", "title", title)
	return true
}
