package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Discord embed colors, decimal.
const (
	discordBlue  = 3447003
	discordRed   = 15548997
	discordGreen = 5763719
)

type discordNotifier struct {
	webhookURL string
}

func newDiscordNotifier(webhookURL string) (Notifier, error) {
	if webhookURL == "" {
		return nil, errors.New("missing webhook URL")
	}
	return &discordNotifier{webhookURL: webhookURL}, nil
}

func (n *discordNotifier) Name() string { return "discord" }

func (n *discordNotifier) Send(title, message, url, category string) bool {
	color := discordBlue
	cat := strings.ToLower(category)
	if strings.Contains(cat, "security") {
		color = discordRed
	} else if strings.Contains(cat, "cost") {
		color = discordGreen
	}

	payload := map[string]any{
		"username": "NewsBrief Agent",
		"embeds": []map[string]any{
			{
				"title":       fmt.Sprintf("[%s] %s", category, truncate(title, 200)),
				"description": truncate(message, 2000),
				"url":         url,
				"color":       color,
				"footer":      map[string]any{"text": "Powered by NewsBrief"},
			},
		},
	}

	if err := postJSON(n.webhookURL, payload, nil); err != nil {
		slog.Error("Failed to send Discord notification", "title", title, "error", err)
		return false
	}

	slog.Info("Discord notification sent", "title", title)
	return true
}
