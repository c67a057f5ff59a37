package database

import (
	"time"
)

// Item is a single stored update (article, blog post, bulletin).
type Item struct {
	ID          int64
	SourceID    string // feed GUID, or entry link as fallback
	Title       string
	URL         string
	Content     string // sanitized plain text, empty when the feed had none
	Summary     string // engine-generated, empty until summarization
	PublishedAt time.Time
	CreatedAt   time.Time
	Tags        string // source feed name plus optional filter marker
	IsNotified  bool
}

// Stats aggregates item counts for the stats endpoint and verify command.
type Stats struct {
	Total      int
	Pending    int
	Notified   int
	Summarized int
}
