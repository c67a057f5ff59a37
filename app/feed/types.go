package feed

import "time"

// Source is one allow-listed feed endpoint.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Candidate is a cleaned feed entry ready for dedup and filtering.
type Candidate struct {
	SourceID    string
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
}
