package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"newsbrief/app/database"
	"newsbrief/app/engine"
	"newsbrief/app/feed"
)

// ProcessResult aggregates the outcome of one processing cycle.
type ProcessResult struct {
	Pending    int
	Notified   int
	Skipped    int
	BulkMarked int64
}

// Processor drives the summarize-then-notify cycle over pending items.
type Processor struct {
	repo       database.ItemRepository
	summarizer engine.Summarizer
	dispatcher *Dispatcher
	fetcher    *feed.Fetcher
	extractor  *feed.Extractor

	limit          int
	bulkThreshold  int
	extractContent bool
}

func NewProcessor(repo database.ItemRepository, summarizer engine.Summarizer, dispatcher *Dispatcher, limit, bulkThreshold int) *Processor {
	return &Processor{
		repo:          repo,
		summarizer:    summarizer,
		dispatcher:    dispatcher,
		limit:         limit,
		bulkThreshold: bulkThreshold,
	}
}

// EnableContentExtraction makes the processor fetch the article page and
// extract readable text for items whose feed entry carried no content.
func (p *Processor) EnableContentExtraction(fetcher *feed.Fetcher, extractor *feed.Extractor) {
	p.fetcher = fetcher
	p.extractor = extractor
	p.extractContent = true
}

// Process summarizes and delivers pending items, newest first. Each item is
// marked notified only after every channel accepted it; a failed summary or
// a partial delivery leaves the item pending for the next cycle.
func (p *Processor) Process(ctx context.Context) (ProcessResult, error) {
	var result ProcessResult

	pending, err := p.repo.CountPending()
	if err != nil {
		return result, fmt.Errorf("failed to count pending items: %w", err)
	}
	result.Pending = pending
	if pending == 0 {
		slog.Info("No pending items to process")
		return result, nil
	}

	// First-run guard: a fresh database with a large backlog means the
	// user just imported history. Swallow the backlog instead of
	// notifying all of it.
	notified, err := p.repo.CountNotified()
	if err != nil {
		return result, fmt.Errorf("failed to count notified items: %w", err)
	}
	if notified == 0 && pending > p.bulkThreshold {
		slog.Warn("Initial import detected, marking backlog as read", "pending", pending, "threshold", p.bulkThreshold)
		marked, err := p.repo.MarkAllNotified()
		if err != nil {
			return result, fmt.Errorf("failed to mark backlog: %w", err)
		}
		result.BulkMarked = marked
		return result, nil
	}

	items, err := p.repo.GetPending(p.limit)
	if err != nil {
		return result, fmt.Errorf("failed to load pending items: %w", err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if p.processItem(ctx, item) {
			result.Notified++
		} else {
			result.Skipped++
		}
	}

	slog.Info("Processing cycle complete", "pending", result.Pending,
		"notified", result.Notified, "skipped", result.Skipped)
	return result, nil
}

func (p *Processor) processItem(ctx context.Context, item database.Item) bool {
	if item.Content == "" && p.extractContent {
		if content := p.extract(ctx, item.URL); content != "" {
			item.Content = content
		}
	}

	if item.Summary == "" {
		text := item.Content
		if text == "" {
			text = item.Title
		}

		summary, err := p.summarizer.Summarize(ctx, text)
		if err != nil {
			slog.Error("Summarization failed, item stays pending", "id", item.ID, "error", err)
			return false
		}
		if summary == "" {
			slog.Error("Summarizer returned empty text, item stays pending", "id", item.ID)
			return false
		}

		// Checkpoint the summary before delivery so a notification
		// failure does not cost the engine call.
		if err := p.repo.UpdateSummary(item.ID, summary); err != nil {
			slog.Error("Failed to store summary", "id", item.ID, "error", err)
			return false
		}
		item.Summary = summary
	}

	category := item.Tags
	if category == "" {
		category = "General"
	}

	if !p.dispatcher.Dispatch(item.Title, item.Summary, item.URL, category) {
		slog.Warn("Delivery incomplete, item stays pending", "id", item.ID)
		return false
	}

	if err := p.repo.MarkNotified(item.ID); err != nil {
		slog.Error("Failed to mark item notified", "id", item.ID, "error", err)
		return false
	}

	slog.Info("Item processed and notified", "id", item.ID, "title", item.Title)
	return true
}

func (p *Processor) extract(ctx context.Context, url string) string {
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		slog.Warn("Failed to fetch article page", "url", url, "error", err)
		return ""
	}

	content, err := p.extractor.Run(page, url)
	if err != nil {
		slog.Warn("Failed to extract article content", "url", url, "error", err)
		return ""
	}

	return content
}
