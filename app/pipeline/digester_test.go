package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newsbrief/app/database"
	"newsbrief/app/notify"
)

func digestItem(sourceID, tags, summary string) database.Item {
	return database.Item{
		SourceID:    sourceID,
		Title:       "Title " + sourceID,
		URL:         "https://aws.amazon.com/blogs/" + sourceID,
		PublishedAt: time.Now().UTC(),
		CreatedAt:   time.Now().UTC(),
		Tags:        tags,
		Summary:     summary,
	}
}

func TestDigester_SendDigest_ExcludesIgnoredItems(t *testing.T) {
	repo := newMemRepo()
	for _, item := range []database.Item{
		digestItem("normal", "AWS Security Blog", "important fix"),
		digestItem("ignored", "AWS Compute Blog [IGNORED]", ""),
		digestItem("batched", "AWS Compute Blog [DIGEST]", ""),
	} {
		if _, err := repo.InsertIfAbsent(item); err != nil {
			t.Fatal(err)
		}
	}

	summarizer := &fakeSummarizer{}
	notifier := &fakeNotifier{name: "slack"}
	digester := NewDigester(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 50, 15000)

	if err := digester.SendDigest(context.Background(), 7); err != nil {
		t.Fatalf("Expected digest to succeed, got: %v", err)
	}

	if strings.Contains(summarizer.digestInput, "Title ignored") {
		t.Error("Expected ignored item to be excluded from the digest")
	}
	if !strings.Contains(summarizer.digestInput, "Title normal") {
		t.Error("Expected normal item in the digest")
	}
	if !strings.Contains(summarizer.digestInput, "Title batched") {
		t.Error("Expected digest-only item in the digest")
	}
	if !strings.Contains(summarizer.digestInput, "important fix") {
		t.Error("Expected item summary in the digest input")
	}
	if !strings.Contains(summarizer.digestInput, "No summary") {
		t.Error("Expected placeholder for unsummarized items")
	}

	if notifier.callCount() != 1 {
		t.Errorf("Expected 1 digest delivery, got %d", notifier.callCount())
	}
	if notifier.lastURL() != digestLink {
		t.Errorf("Expected digest delivered with the landing-page link, got %q", notifier.lastURL())
	}
}

func TestDigester_SendDigest_NoItems(t *testing.T) {
	repo := newMemRepo()
	summarizer := &fakeSummarizer{}
	notifier := &fakeNotifier{name: "slack"}
	digester := NewDigester(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 50, 15000)

	if err := digester.SendDigest(context.Background(), 7); err != nil {
		t.Fatalf("Expected empty period to be a no-op, got: %v", err)
	}
	if summarizer.calls != 0 {
		t.Error("Expected no engine call for an empty period")
	}
	if notifier.callCount() != 0 {
		t.Error("Expected no delivery for an empty period")
	}
}

func TestDigester_SendDigest_ItemCap(t *testing.T) {
	repo := newMemRepo()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.InsertIfAbsent(digestItem(id, "AWS Compute Blog", "s")); err != nil {
			t.Fatal(err)
		}
	}

	summarizer := &fakeSummarizer{}
	notifier := &fakeNotifier{name: "slack"}
	digester := NewDigester(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 2, 15000)

	if err := digester.SendDigest(context.Background(), 7); err != nil {
		t.Fatal(err)
	}

	lines := strings.Count(summarizer.digestInput, "\n")
	if lines != 2 {
		t.Errorf("Expected 2 digest lines under the cap, got %d", lines)
	}
}

func TestDigester_SendDigest_SizeCap(t *testing.T) {
	repo := newMemRepo()
	first := digestItem("first", "AWS Compute Blog", strings.Repeat("x", 300))
	second := digestItem("second", "AWS Compute Blog", strings.Repeat("y", 300))
	for _, item := range []database.Item{first, second} {
		if _, err := repo.InsertIfAbsent(item); err != nil {
			t.Fatal(err)
		}
	}

	summarizer := &fakeSummarizer{}
	notifier := &fakeNotifier{name: "slack"}
	digester := NewDigester(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 50, 400)

	if err := digester.SendDigest(context.Background(), 7); err != nil {
		t.Fatal(err)
	}

	if len(summarizer.digestInput) > 400 {
		t.Errorf("Expected digest input under the size cap, got %d chars", len(summarizer.digestInput))
	}
	if !strings.Contains(summarizer.digestInput, "Title first") {
		t.Error("Expected first item under the cap")
	}
	if strings.Contains(summarizer.digestInput, "Title second") {
		t.Error("Expected second item to be dropped by the size cap")
	}
}

func TestDigester_SendDigest_EngineFailure(t *testing.T) {
	repo := newMemRepo()
	if _, err := repo.InsertIfAbsent(digestItem("a", "AWS Compute Blog", "s")); err != nil {
		t.Fatal(err)
	}

	summarizer := &fakeSummarizer{err: errors.New("engine down")}
	notifier := &fakeNotifier{name: "slack"}
	digester := NewDigester(repo, summarizer, NewDispatcher([]notify.Notifier{notifier}), 50, 15000)

	if err := digester.SendDigest(context.Background(), 7); err == nil {
		t.Error("Expected error when the engine fails")
	}
	if notifier.callCount() != 0 {
		t.Error("Expected no delivery when digest generation fails")
	}
}

func TestDigester_SendDigest_AllChannelsFail(t *testing.T) {
	repo := newMemRepo()
	if _, err := repo.InsertIfAbsent(digestItem("a", "AWS Compute Blog", "s")); err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{name: "slack", fail: true}
	digester := NewDigester(repo, &fakeSummarizer{}, NewDispatcher([]notify.Notifier{notifier}), 50, 15000)

	if err := digester.SendDigest(context.Background(), 7); err == nil {
		t.Error("Expected error when no channel accepts the digest")
	}
}
