package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"memento/internal/application/store"
	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	"memento/internal/infrastructure/scheduler"
	"memento/internal/pkg/clock"
	appErrors "memento/internal/pkg/errors"
	"memento/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

type schedulerService struct {
	cronScheduler *scheduler.Scheduler
	store         *store.ReminderStore
	notifier      Notifier
	clock         clock.Clock
	interval      time.Duration
	window        time.Duration
	log           logger.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	cancel  context.CancelFunc
	// undeleted holds reminders already handed to the notifier whose removal failed.
	// They are only ever deleted again, never redelivered.
	undeleted map[string]struct{}
}

// NewSchedulerService creates a new instance of SchedulerService implementation for the
// reminders held by st.
func NewSchedulerService(
	cronScheduler *scheduler.Scheduler,
	st *store.ReminderStore,
	notifier Notifier,
	clk clock.Clock,
	interval time.Duration,
	window time.Duration,
	log logger.Logger,
) SchedulerService {
	return &schedulerService{
		cronScheduler: cronScheduler,
		store:         st,
		notifier:      notifier,
		clock:         clk,
		interval:      interval,
		window:        window,
		log:           log.WithField("scheduler", st.Kind().String()),
		undeleted:     make(map[string]struct{}),
	}
}

// Start registers the periodic scan on the cron driver. Passes run with a context
// derived from ctx, cancelled by Stop.
func (s *schedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("%w: scheduler already started", appErrors.ErrInternalServer)
	}

	passCtx, cancel := context.WithCancel(ctx)
	entryID, err := s.cronScheduler.Every(s.interval, func() {
		report := s.ScanOnce(passCtx)
		s.log.Debug(fmt.Sprintf("Scan finished: delivered=%d failed=%d stale=%d pending=%d undeleted=%d",
			report.Delivered, report.Failed, report.Stale, report.Pending, report.Undeleted))
	})
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %v", appErrors.ErrInternalServer, err)
	}
	s.entryID = entryID
	s.cancel = cancel
	s.log.Info(fmt.Sprintf("Scanning every %s, dropping reminders older than %s", s.interval, s.window))
	return nil
}

// Stop cancels an in-flight pass and unregisters the periodic scan.
func (s *schedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cronScheduler.RemoveJob(s.entryID)
	s.cancel = nil
	s.entryID = 0
}

// ScanOnce runs a single pass over the pending reminders against the current time.
// Each reminder is handled on its own: a failure never stops the pass. Cancelling
// ctx stops the pass before the next reminder.
func (s *schedulerService) ScanOnce(ctx context.Context) ScanReport {
	now := s.clock.Now().UTC()
	pending := s.store.AllPending()

	var report ScanReport
	seen := make(map[string]struct{}, len(pending))
	for _, r := range pending {
		if ctx.Err() != nil {
			s.log.Debug("Scan cancelled, remaining reminders left for the next pass")
			return report
		}
		seen[undeletedKey(r)] = struct{}{}
		s.process(ctx, r, now, &report)
	}

	s.mu.Lock()
	for key := range s.undeleted {
		if _, ok := seen[key]; !ok {
			delete(s.undeleted, key)
		}
	}
	s.mu.Unlock()
	return report
}

func (s *schedulerService) process(ctx context.Context, r *entity.Reminder, now time.Time, report *ScanReport) {
	switch r.Classify(now, s.window) {
	case constant.NotDue:
		report.Pending++
		return
	case constant.Stale:
		report.Stale++
		s.log.Error(fmt.Sprintf("Dropping stale reminder %s of %s: due %s, now %s",
			r.ID, r.Owner, r.DueAt.Format(entity.TimestampFormat), now.Format(entity.TimestampFormat)), nil)
	case constant.DueNow:
		if s.isUndeleted(r) {
			break
		}
		err := s.deliver(ctx, r)
		switch {
		case err == nil:
			report.Delivered++
			s.log.Info(fmt.Sprintf("Delivered reminder %s to %s", r.ID, r.Owner))
		case errors.Is(err, appErrors.ErrDeliveryPermanent):
			report.Failed++
			s.log.Warn(fmt.Sprintf("Reminder %s for %s cannot be delivered: %v", r.ID, r.Owner, err))
		default:
			report.Failed++
			s.log.Error(fmt.Sprintf("Failed to deliver reminder %s to %s", r.ID, r.Owner), err)
		}
	}

	// A processed reminder is removed whatever the outcome, so it fires at most once.
	if err := s.store.Delete(context.WithoutCancel(ctx), r); err != nil {
		report.Undeleted++
		s.markUndeleted(r)
		s.log.Error(fmt.Sprintf("Failed to remove processed reminder %s, retrying next pass", r.ID), err)
		return
	}
	s.clearUndeleted(r)
}

// deliver calls the notifier, turning a panic into an error.
func (s *schedulerService) deliver(ctx context.Context, r *entity.Reminder) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notifier panicked: %v", rec)
		}
	}()
	return s.notifier.Deliver(ctx, r.Destination(), r)
}

func undeletedKey(r *entity.Reminder) string {
	return r.Owner.Key() + "/" + r.ID
}

func (s *schedulerService) isUndeleted(r *entity.Reminder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.undeleted[undeletedKey(r)]
	return ok
}

func (s *schedulerService) markUndeleted(r *entity.Reminder) {
	s.mu.Lock()
	s.undeleted[undeletedKey(r)] = struct{}{}
	s.mu.Unlock()
}

func (s *schedulerService) clearUndeleted(r *entity.Reminder) {
	s.mu.Lock()
	delete(s.undeleted, undeletedKey(r))
	s.mu.Unlock()
}
