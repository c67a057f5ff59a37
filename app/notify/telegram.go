package notify

import (
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type telegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func newTelegramNotifier(token string, chatID int64) (Notifier, error) {
	if token == "" {
		return nil, errors.New("missing bot token")
	}
	if chatID == 0 {
		return nil, errors.New("missing chat ID")
	}

	bot, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &telegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *telegramNotifier) Name() string { return "telegram" }

func (n *telegramNotifier) Send(title, message, url, category string) bool {
	text := fmt.Sprintf("%s *%s*: %s\n\n%s\n\n[Read More](%s)",
		categoryEmoji(category), category, title, message, url)

	_, err := n.bot.Send(tele.ChatID(n.chatID), text, &tele.SendOptions{
		ParseMode: tele.ModeMarkdown,
	})
	if err != nil {
		slog.Error("Failed to send Telegram notification", "title", title, "error", err)
		return false
	}

	slog.Info("Telegram notification sent", "title", title)
	return true
}
