package scheduler

import (
	"fmt"
	"sync"
	"time"

	"memento/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron jobs. Every job is wrapped so that a run still in progress
// makes the next tick skip instead of overlapping, and a panicking job is recovered.
type Scheduler struct {
	cron    *cron.Cron
	log     logger.Logger
	mu      sync.Mutex // To protect access to job management
	started bool
}

// NewScheduler creates a new cron scheduler. Jobs only run after Start.
func NewScheduler(log logger.Logger) *Scheduler {
	cronLog := cron.PrintfLogger(log)
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	return &Scheduler{
		cron: c,
		log:  log,
	}
}

// Start begins running the registered jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
	s.log.Info("Cron scheduler started.")
}

// AddJob adds a new job to the scheduler.
// spec follows the cron format with seconds (e.g., "0 30 * * * *") or a descriptor
// such as "@every 2s".
func (s *Scheduler) AddJob(spec string, cmd func()) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, cmd)
	if err != nil {
		s.log.Error("Failed to add cron job", err)
		return 0, fmt.Errorf("failed to add cron job: %w", err)
	}
	s.log.Info(fmt.Sprintf("Added cron job with ID %d, spec: %s", id, spec))
	return id, nil
}

// Every adds a job that runs at a fixed interval.
func (s *Scheduler) Every(interval time.Duration, cmd func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", interval)
	}
	return s.AddJob(fmt.Sprintf("@every %s", interval), cmd)
}

// RemoveJob removes a job from the scheduler by its EntryID.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Remove(id)
	s.log.Info(fmt.Sprintf("Removed cron job with ID %d", id))
}

// Stop stops the cron scheduler and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.started = false
	s.log.Info("Cron scheduler stopped.")
}

// GetEntries returns the list of scheduled entries. Useful for debugging.
func (s *Scheduler) GetEntries() []cron.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entries()
}
