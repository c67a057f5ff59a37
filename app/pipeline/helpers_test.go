package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"newsbrief/app/database"
)

// memRepo is an in-memory ItemRepository for pipeline tests.
type memRepo struct {
	mu     sync.Mutex
	items  []database.Item
	nextID int64
}

var _ database.ItemRepository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1}
}

func (r *memRepo) InsertIfAbsent(item database.Item) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.SourceID == item.SourceID {
			return false, nil
		}
	}

	item.ID = r.nextID
	r.nextID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, item)
	return true, nil
}

func (r *memRepo) GetPending(limit int) ([]database.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []database.Item
	for _, item := range r.items {
		if !item.IsNotified {
			pending = append(pending, item)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].PublishedAt.After(pending[j].PublishedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *memRepo) CountPending() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, item := range r.items {
		if !item.IsNotified {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CountNotified() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, item := range r.items {
		if item.IsNotified {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) MarkAllNotified() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var marked int64
	for i := range r.items {
		if !r.items[i].IsNotified {
			r.items[i].IsNotified = true
			marked++
		}
	}
	return marked, nil
}

func (r *memRepo) UpdateSummary(id int64, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Summary = summary
			return nil
		}
	}
	return errors.New("item not found")
}

func (r *memRepo) MarkNotified(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].IsNotified = true
			return nil
		}
	}
	return errors.New("item not found")
}

func (r *memRepo) GetCreatedSince(since time.Time) ([]database.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []database.Item
	for _, item := range r.items {
		if !item.CreatedAt.Before(since) {
			found = append(found, item)
		}
	}
	return found, nil
}

func (r *memRepo) GetRecent(limit int, pendingSummaryOnly bool) ([]database.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []database.Item
	for _, item := range r.items {
		if pendingSummaryOnly && item.Summary != "" {
			continue
		}
		found = append(found, item)
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (r *memRepo) GetPublishedSince(since time.Time, tags []string) ([]database.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []database.Item
	for _, item := range r.items {
		if item.PublishedAt.Before(since) {
			continue
		}
		if len(tags) > 0 {
			matched := false
			for _, tag := range tags {
				if strings.Contains(item.Tags, tag) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		found = append(found, item)
	}
	return found, nil
}

func (r *memRepo) GetPublishedBefore(cutoff time.Time) ([]database.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []database.Item
	for _, item := range r.items {
		if item.PublishedAt.Before(cutoff) {
			found = append(found, item)
		}
	}
	return found, nil
}

func (r *memRepo) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []database.Item
	var deleted int64
	for _, item := range r.items {
		if item.PublishedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
	return deleted, nil
}

func (r *memRepo) GetStats() (database.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats database.Stats
	stats.Total = len(r.items)
	for _, item := range r.items {
		if item.IsNotified {
			stats.Notified++
		} else {
			stats.Pending++
		}
		if item.Summary != "" {
			stats.Summarized++
		}
	}
	return stats, nil
}

func (r *memRepo) Vacuum() error { return nil }

func (r *memRepo) get(id int64) (database.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.ID == id {
			return item, true
		}
	}
	return database.Item{}, false
}

// fakeSummarizer implements engine.Summarizer for tests.
type fakeSummarizer struct {
	mu          sync.Mutex
	calls       int
	digestInput string
	err         error
	empty       bool
}

func (s *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.empty {
		return "", nil
	}
	return "summary of: " + text, nil
}

func (s *fakeSummarizer) Digest(_ context.Context, itemsText string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return "", s.err
	}
	s.digestInput = itemsText
	return "digest report", nil
}

// fakeNotifier implements notify.Notifier for tests.
type fakeNotifier struct {
	mu    sync.Mutex
	name  string
	fail  bool
	calls []string
	urls  []string
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Send(title, message, url, category string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.calls = append(n.calls, title)
	n.urls = append(n.urls, url)
	return !n.fail
}

func (n *fakeNotifier) lastURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.urls) == 0 {
		return ""
	}
	return n.urls[len(n.urls)-1]
}

func (n *fakeNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}
