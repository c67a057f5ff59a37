package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/119.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Fetcher retrieves raw feed bytes. Every fetch validates the URL first,
// rotates the client identity per attempt, sleeps a short random jitter, and
// retries transient failures with exponential backoff.
type Fetcher struct {
	validator *Validator
	client    *http.Client
	limiter   *rate.Limiter
	retries   int

	// Overridable in tests; zero values fall back to defaults in Fetch.
	JitterMin   time.Duration
	JitterMax   time.Duration
	BackoffBase time.Duration
}

func NewFetcher(validator *Validator, timeout time.Duration, retries int) *Fetcher {
	if retries < 1 {
		retries = 1
	}
	return &Fetcher{
		validator:   validator,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(1), 1),
		retries:     retries,
		JitterMin:   1500 * time.Millisecond,
		JitterMax:   4 * time.Second,
		BackoffBase: time.Second,
	}
}

// Fetch returns the response body for url. A validation failure is returned
// immediately and never retried; transient failures exhaust the attempt
// budget before surfacing the last error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.validator.Validate(url); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		f.sleepJitter(ctx, url)

		data, err := f.doRequest(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt < f.retries {
			delay := f.BackoffBase * time.Duration(1<<uint(attempt-1))
			slog.Warn("Fetch failed, retrying", "url", url, "attempt", attempt, "max_attempts", f.retries, "delay", delay.String(), "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", url, f.retries, lastErr)
}

func (f *Fetcher) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (f *Fetcher) sleepJitter(ctx context.Context, url string) {
	if f.JitterMax <= 0 || f.JitterMax < f.JitterMin {
		return
	}
	jitter := f.JitterMin + time.Duration(rand.Int63n(int64(f.JitterMax-f.JitterMin)+1))
	slog.Debug("Sleeping before fetch", "url", url, "jitter", jitter.String())
	select {
	case <-ctx.Done():
	case <-time.After(jitter):
	}
}
