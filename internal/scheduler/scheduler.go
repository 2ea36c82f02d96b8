// Package scheduler runs pipeline jobs on cron schedules, one job at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	_ "time/tzdata" // Named zones on hosts without a zoneinfo database

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler triggers jobs from standard five-field cron specs. All jobs share one
// lock, so a job that fires while another is running waits for it to finish.
type Scheduler struct {
	run      sync.Mutex
	cron     *cron.Cron
	location *time.Location

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	names  map[string]cron.EntryID
}

// New creates a scheduler evaluating specs in timezone ("" or "Local" for the host zone).
func New(timezone string) (*Scheduler, error) {
	loc := time.Local
	if timezone != "" && timezone != "Local" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		location: loc,
		ctx:      ctx,
		cancel:   cancel,
		names:    make(map[string]cron.EntryID),
	}, nil
}

// Location returns the scheduler time zone.
func (s *Scheduler) Location() *time.Location {
	return s.location
}

// Add registers job under name. An empty spec leaves the job unscheduled.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if job == nil {
		return errors.New("job must not be nil")
	}
	if spec == "" {
		slog.Info("job disabled", "job", name)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.execute(name, job) })
	if err != nil {
		return fmt.Errorf("add cron %q: %w", name, err)
	}
	s.names[name] = id
	return nil
}

// Next returns the next activation time of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.names[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Run executes the named job immediately under the shared lock.
func (s *Scheduler) Run(name string, job Job) {
	s.execute(name, job)
}

// Start begins firing jobs in the background. Jobs run with a context that is canceled
// when parent is done or Stop is called.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(parent)
	s.mu.Unlock()

	s.cron.Start()
}

// Stop prevents new activations, cancels running jobs, and waits for them to return or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) execute(name string, job Job) {
	s.run.Lock()
	defer s.run.Unlock()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	slog.Info("job started", "job", name)
	if err := job(ctx); err != nil {
		slog.Error("job failed", "job", name, "duration", time.Since(start), "error", err)
		return
	}
	slog.Info("job finished", "job", name, "duration", time.Since(start))
}
