package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsbrief/app/database"
	"newsbrief/app/engine"
	"newsbrief/app/filter"
)

// digestLink is the landing page attached to digest notifications, which
// aggregate many items and have no single story URL.
const digestLink = "https://aws.amazon.com/new/"

// Digester consolidates recent items into a single categorized report and
// fans it out best-effort. Digest delivery is not retried; the next
// scheduled digest covers any gap.
type Digester struct {
	repo       database.ItemRepository
	summarizer engine.Summarizer
	dispatcher *Dispatcher

	maxItems int
	maxChars int
}

func NewDigester(repo database.ItemRepository, summarizer engine.Summarizer, dispatcher *Dispatcher, maxItems, maxChars int) *Digester {
	return &Digester{
		repo:       repo,
		summarizer: summarizer,
		dispatcher: dispatcher,
		maxItems:   maxItems,
		maxChars:   maxChars,
	}
}

// SendDigest builds and delivers a digest of the last days days. Items the
// filter rules ignored are excluded; digest-only items are the main
// audience of this report.
func (d *Digester) SendDigest(ctx context.Context, days int) error {
	since := time.Now().UTC().AddDate(0, 0, -days)

	items, err := d.repo.GetCreatedSince(since)
	if err != nil {
		return fmt.Errorf("failed to load digest items: %w", err)
	}

	itemsText, included := d.buildItemsText(items)
	if included == 0 {
		slog.Info("No items for digest period", "days", days)
		return nil
	}

	slog.Info("Generating digest", "days", days, "items", included)

	report, err := d.summarizer.Digest(ctx, itemsText)
	if err != nil {
		return fmt.Errorf("failed to generate digest: %w", err)
	}

	title := fmt.Sprintf("News Digest (%s)", time.Now().UTC().Format("2006-01-02"))
	sent := d.dispatcher.Broadcast(title, report, digestLink, "Digest")
	if sent == 0 {
		return fmt.Errorf("digest was not delivered to any channel")
	}

	slog.Info("Digest sent", "channels", sent)
	return nil
}

func (d *Digester) buildItemsText(items []database.Item) (string, int) {
	var b strings.Builder
	included := 0

	for _, item := range items {
		if strings.Contains(item.Tags, filter.MarkerIgnored) {
			continue
		}
		if d.maxItems > 0 && included >= d.maxItems {
			slog.Warn("Digest item cap reached", "cap", d.maxItems, "total", len(items))
			break
		}

		category := item.Tags
		if category == "" {
			category = "General"
		}
		summary := item.Summary
		if summary == "" {
			summary = "No summary"
		}

		line := fmt.Sprintf("- [%s] %s: %s\n", category, item.Title, summary)
		if d.maxChars > 0 && b.Len()+len(line) > d.maxChars {
			slog.Warn("Digest size cap reached", "cap", d.maxChars)
			break
		}

		b.WriteString(line)
		included++
	}

	return b.String(), included
}
