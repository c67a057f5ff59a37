package feed

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
)

// ErrNoEntries marks a feed that parsed but produced nothing usable.
var ErrNoEntries = errors.New("feed contains no entries")

// Parser turns raw feed bytes into sanitized candidates.
type Parser struct {
	gofeedParser *gofeed.Parser
	sanitizer    *Sanitizer
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		sanitizer:    NewSanitizer(),
	}
}

// Parse parses feed data into candidates. A malformed entry is skipped and
// logged; it never aborts the rest of the batch. Zero usable entries is a
// hard failure for the feed.
func (p *Parser) Parse(data []byte) ([]Candidate, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if len(parsed.Items) == 0 {
		return nil, ErrNoEntries
	}

	candidates := make([]Candidate, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		candidate, err := p.normalizeEntry(entry)
		if err != nil {
			slog.Warn("Skipping malformed entry", "title", entry.Title, "error", err)
			continue
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return nil, ErrNoEntries
	}

	slog.Debug("Parsed feed", "entries", len(parsed.Items), "candidates", len(candidates))
	return candidates, nil
}

func (p *Parser) normalizeEntry(entry *gofeed.Item) (Candidate, error) {
	sourceID := coalesce(entry.GUID, entry.Link)
	if sourceID == "" {
		return Candidate{}, errors.New("entry has neither GUID nor link")
	}

	title := p.sanitizer.Run(entry.Title)
	if title == "" {
		title = "No Title"
	}

	// Prefer full content, fall back to the entry's summary/description.
	content := p.sanitizer.Run(coalesce(entry.Content, entry.Description))

	publishedAt := time.Now().UTC()
	if entry.PublishedParsed != nil {
		publishedAt = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		publishedAt = entry.UpdatedParsed.UTC()
	}

	return Candidate{
		SourceID:    sourceID,
		Title:       title,
		URL:         entry.Link,
		Content:     content,
		PublishedAt: publishedAt,
	}, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
