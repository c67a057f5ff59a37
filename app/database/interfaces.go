package database

import (
	"time"
)

type ItemRepository interface {
	// InsertIfAbsent persists item unless its source_id is already known.
	// Returns true when a new row was created.
	InsertIfAbsent(item Item) (bool, error)

	GetPending(limit int) ([]Item, error)
	CountPending() (int, error)
	CountNotified() (int, error)
	MarkAllNotified() (int64, error)

	UpdateSummary(id int64, summary string) error
	MarkNotified(id int64) error

	GetCreatedSince(since time.Time) ([]Item, error)
	GetRecent(limit int, pendingSummaryOnly bool) ([]Item, error)
	GetPublishedSince(since time.Time, tags []string) ([]Item, error)
	GetPublishedBefore(cutoff time.Time) ([]Item, error)
	DeletePublishedBefore(cutoff time.Time) (int64, error)

	GetStats() (Stats, error)
	Vacuum() error
}
