package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the scan/process cycle and the digest on cron schedules.
// A mutex serializes the jobs so a slow cycle and a digest never touch the
// pipeline concurrently.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	cycle   func(ctx context.Context) error
	digest  func(ctx context.Context) error
	started bool
}

func New(cycle, digest func(ctx context.Context) error) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		cycle:  cycle,
		digest: digest,
	}
}

// Start registers the schedules and launches the cron loop. An empty
// schedule disables the corresponding job.
func (s *Scheduler) Start(ctx context.Context, cycleSpec, digestSpec string) error {
	if cycleSpec != "" {
		if _, err := s.cron.AddFunc(cycleSpec, func() { s.runJob(ctx, "cycle", s.cycle) }); err != nil {
			return fmt.Errorf("invalid cycle schedule %q: %w", cycleSpec, err)
		}
	}
	if digestSpec != "" {
		if _, err := s.cron.AddFunc(digestSpec, func() { s.runJob(ctx, "digest", s.digest) }); err != nil {
			return fmt.Errorf("invalid digest schedule %q: %w", digestSpec, err)
		}
	}

	s.cron.Start()
	s.started = true
	slog.Info("Scheduler started", "cycle", cycleSpec, "digest", digestSpec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

// TriggerCycle runs the scan/process cycle outside its schedule.
func (s *Scheduler) TriggerCycle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle(ctx)
}

func (s *Scheduler) runJob(ctx context.Context, name string, job func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.Debug("Scheduled job starting", "job", name)
	if err := job(ctx); err != nil {
		slog.Error("Scheduled job failed", "job", name, "error", err)
	}
}
