package pipeline

import (
	"context"
	"log/slog"
	"time"

	"newsbrief/app/database"
	"newsbrief/app/feed"
	"newsbrief/app/filter"
)

// ScanResult aggregates the outcome of one scan pass over the sources.
type ScanResult struct {
	Feeds      int
	Failed     int
	Added      int
	Duplicates int
	Filtered   int
}

// Scanner pulls the configured sources, classifies every entry through the
// filter rules, and persists the survivors. One failing feed never blocks
// the rest.
type Scanner struct {
	fetcher *feed.Fetcher
	parser  *feed.Parser
	filters *filter.Engine
	repo    database.ItemRepository
}

func NewScanner(fetcher *feed.Fetcher, parser *feed.Parser, filters *filter.Engine, repo database.ItemRepository) *Scanner {
	return &Scanner{
		fetcher: fetcher,
		parser:  parser,
		filters: filters,
		repo:    repo,
	}
}

func (s *Scanner) Scan(ctx context.Context, sources []feed.Source) ScanResult {
	var result ScanResult
	result.Feeds = len(sources)

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			slog.Warn("Scan aborted", "error", err)
			break
		}

		added, duplicates, filtered, err := s.scanSource(ctx, source)
		if err != nil {
			slog.Error("Failed to scan source", "source", source.Name, "url", source.URL, "error", err)
			result.Failed++
			continue
		}

		result.Added += added
		result.Duplicates += duplicates
		result.Filtered += filtered
		slog.Info("Source scanned", "source", source.Name, "added", added, "duplicates", duplicates)
	}

	slog.Info("Scan complete", "feeds", result.Feeds, "failed", result.Failed,
		"added", result.Added, "duplicates", result.Duplicates, "filtered", result.Filtered)
	return result
}

func (s *Scanner) scanSource(ctx context.Context, source feed.Source) (added, duplicates, filtered int, err error) {
	data, err := s.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return 0, 0, 0, err
	}

	candidates, err := s.parser.Parse(data)
	if err != nil {
		return 0, 0, 0, err
	}

	for _, candidate := range candidates {
		item := s.classify(candidate, source.Name)
		if item.IsNotified {
			filtered++
		}

		inserted, err := s.repo.InsertIfAbsent(item)
		if err != nil {
			slog.Error("Failed to store item", "source_id", item.SourceID, "error", err)
			continue
		}
		if inserted {
			added++
		} else {
			duplicates++
		}
	}

	return added, duplicates, filtered, nil
}

// classify runs the filter rules over a candidate and builds the stored
// item. Ignored and digest-only items are persisted already marked as
// notified so the realtime cycle skips them; the tag marker records why.
func (s *Scanner) classify(candidate feed.Candidate, sourceName string) database.Item {
	action, ruleName := s.filters.Evaluate(candidate.Title)

	tags := sourceName
	notified := false
	switch action {
	case filter.ActionIgnore:
		tags += " " + filter.MarkerIgnored
		notified = true
	case filter.ActionDigestOnly:
		tags += " " + filter.MarkerDigest
		notified = true
	case filter.ActionNotify:
	}

	if action != filter.ActionNotify {
		slog.Info("Filter rule applied", "rule", ruleName, "action", action.String(), "title", candidate.Title)
	}

	return database.Item{
		SourceID:    candidate.SourceID,
		Title:       candidate.Title,
		URL:         candidate.URL,
		Content:     candidate.Content,
		PublishedAt: candidate.PublishedAt,
		CreatedAt:   time.Now().UTC(),
		Tags:        tags,
		IsNotified:  notified,
	}
}
