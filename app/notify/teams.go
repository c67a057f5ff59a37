package notify

import (
	"errors"
	"fmt"
	"log/slog"
)

type teamsNotifier struct {
	webhookURL string
}

func newTeamsNotifier(webhookURL string) (Notifier, error) {
	if webhookURL == "" {
		return nil, errors.New("missing webhook URL")
	}
	return &teamsNotifier{webhookURL: webhookURL}, nil
}

func (n *teamsNotifier) Name() string { return "teams" }

func (n *teamsNotifier) Send(title, message, url, category string) bool {
	payload := map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "0076D7",
		"summary":    title,
		"sections": []map[string]any{
			{
				"activityTitle":    fmt.Sprintf("%s %s: %s", categoryEmoji(category), category, title),
				"activitySubtitle": "NewsBrief Intelligence",
				"text":             message,
				"potentialAction": []map[string]any{
					{
						"@type":   "OpenUri",
						"name":    "Read Full Story",
						"targets": []map[string]any{{"os": "default", "uri": url}},
					},
				},
			},
		},
	}

	if err := postJSON(n.webhookURL, payload, nil); err != nil {
		slog.Error("Failed to send Teams notification", "title", title, "error", err)
		return false
	}

	slog.Info("Teams notification sent", "title", title)
	return true
}
