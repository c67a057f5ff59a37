package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"newsbrief/app/database"
	"newsbrief/app/notify"
)

func pendingItem(sourceID string) database.Item {
	return database.Item{
		SourceID:    sourceID,
		Title:       "Title " + sourceID,
		URL:         "https://aws.amazon.com/blogs/" + sourceID,
		Content:     "Content for " + sourceID,
		PublishedAt: time.Now().UTC(),
		Tags:        "AWS Compute Blog",
	}
}

func TestProcessor_Process_BulkImportSafeguard(t *testing.T) {
	repo := newMemRepo()
	for i := 0; i < 51; i++ {
		if _, err := repo.InsertIfAbsent(pendingItem(fmt.Sprintf("item-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	summarizer := &fakeSummarizer{}
	notifier := &fakeNotifier{name: "slack"}
	processor := NewProcessor(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 5, 50)

	result, err := processor.Process(context.Background())
	if err != nil {
		t.Fatalf("Expected process to succeed, got: %v", err)
	}

	if result.BulkMarked != 51 {
		t.Errorf("Expected 51 items bulk-marked, got %d", result.BulkMarked)
	}
	if notifier.callCount() != 0 {
		t.Errorf("Expected zero notifications during bulk import, got %d", notifier.callCount())
	}
	if summarizer.calls != 0 {
		t.Errorf("Expected zero engine calls during bulk import, got %d", summarizer.calls)
	}

	pending, _ := repo.CountPending()
	if pending != 0 {
		t.Errorf("Expected no pending items after bulk mark, got %d", pending)
	}
}

func TestProcessor_Process_BulkSafeguardOnlyOnFirstRun(t *testing.T) {
	repo := newMemRepo()

	seen := pendingItem("seen")
	seen.IsNotified = true
	if _, err := repo.InsertIfAbsent(seen); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 60; i++ {
		if _, err := repo.InsertIfAbsent(pendingItem(fmt.Sprintf("item-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	notifier := &fakeNotifier{name: "slack"}
	processor := NewProcessor(repo, &fakeSummarizer{}, NewDispatcher([]notify.Notifier{notifier}), 5, 50)

	result, err := processor.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.BulkMarked != 0 {
		t.Errorf("Expected no bulk mark when history exists, got %d", result.BulkMarked)
	}
	if result.Notified != 5 {
		t.Errorf("Expected 5 items notified (limit), got %d", result.Notified)
	}
}

func TestProcessor_Process_SummarizesAndNotifies(t *testing.T) {
	repo := newMemRepo()
	if _, err := repo.InsertIfAbsent(pendingItem("a")); err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{name: "slack"}
	processor := NewProcessor(repo, &fakeSummarizer{}, NewDispatcher([]notify.Notifier{notifier}), 5, 50)

	result, err := processor.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Notified != 1 {
		t.Fatalf("Expected 1 item notified, got %d", result.Notified)
	}

	item, ok := repo.get(1)
	if !ok {
		t.Fatal("Item disappeared")
	}
	if !item.IsNotified {
		t.Error("Expected item to be marked notified")
	}
	if item.Summary == "" {
		t.Error("Expected summary to be stored")
	}
	if notifier.callCount() != 1 {
		t.Errorf("Expected 1 notification, got %d", notifier.callCount())
	}
}

func TestProcessor_Process_PartialDeliveryKeepsItemPending(t *testing.T) {
	repo := newMemRepo()
	if _, err := repo.InsertIfAbsent(pendingItem("a")); err != nil {
		t.Fatal(err)
	}

	good := &fakeNotifier{name: "slack"}
	bad := &fakeNotifier{name: "discord", fail: true}
	processor := NewProcessor(repo, &fakeSummarizer{}, NewDispatcher([]notify.Notifier{good, bad}), 5, 50)

	result, err := processor.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Notified != 0 || result.Skipped != 1 {
		t.Errorf("Expected 0 notified and 1 skipped, got %d and %d", result.Notified, result.Skipped)
	}

	item, _ := repo.get(1)
	if item.IsNotified {
		t.Error("Expected item to stay pending after partial delivery")
	}
	// The summary checkpoint must survive the failed delivery.
	if item.Summary == "" {
		t.Error("Expected summary to be stored despite delivery failure")
	}

	// Both channels are retried on the next cycle.
	if _, err := processor.Process(context.Background()); err != nil {
		t.Fatal(err)
	}
	if good.callCount() != 2 || bad.callCount() != 2 {
		t.Errorf("Expected both channels retried, got %d and %d calls", good.callCount(), bad.callCount())
	}
}

func TestProcessor_Process_SummarizerFailureSkipsItem(t *testing.T) {
	repo := newMemRepo()
	if _, err := repo.InsertIfAbsent(pendingItem("a")); err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{name: "slack"}
	summarizer := &fakeSummarizer{err: errors.New("engine down")}
	processor := NewProcessor(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 5, 50)

	result, err := processor.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected 1 skipped item, got %d", result.Skipped)
	}
	if notifier.callCount() != 0 {
		t.Errorf("Expected no delivery without a summary, got %d calls", notifier.callCount())
	}

	item, _ := repo.get(1)
	if item.IsNotified {
		t.Error("Expected item to stay pending after engine failure")
	}
}

func TestProcessor_Process_EmptySummarySkipsItem(t *testing.T) {
	repo := newMemRepo()
	if _, err := repo.InsertIfAbsent(pendingItem("a")); err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{name: "slack"}
	processor := NewProcessor(repo, &fakeSummarizer{empty: true}, NewDispatcher([]notify.Notifier{notifier}), 5, 50)

	result, err := processor.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected empty summary to skip the item, got %d skipped", result.Skipped)
	}
	if notifier.callCount() != 0 {
		t.Errorf("Expected no delivery for empty summary, got %d calls", notifier.callCount())
	}
}

func TestProcessor_Process_ReusesExistingSummary(t *testing.T) {
	repo := newMemRepo()
	item := pendingItem("a")
	item.Summary = "precomputed"
	if _, err := repo.InsertIfAbsent(item); err != nil {
		t.Fatal(err)
	}

	summarizer := &fakeSummarizer{}
	notifier := &fakeNotifier{name: "slack"}
	processor := NewProcessor(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 5, 50)

	if _, err := processor.Process(context.Background()); err != nil {
		t.Fatal(err)
	}
	if summarizer.calls != 0 {
		t.Errorf("Expected no engine call for summarized item, got %d", summarizer.calls)
	}
	if notifier.callCount() != 1 {
		t.Errorf("Expected delivery of existing summary, got %d calls", notifier.callCount())
	}
}
