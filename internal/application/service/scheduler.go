package service

import (
	"context"
)

// ScanReport summarises one pass over the pending reminders.
type ScanReport struct {
	Delivered int
	Failed    int
	Stale     int
	Pending   int
	// Undeleted counts processed reminders whose removal failed and will be retried.
	Undeleted int
}

// SchedulerService defines the interface of the polling loop that fires due reminders.
type SchedulerService interface {
	// Start registers the periodic scan on the cron driver.
	Start(ctx context.Context) error
	// ScanOnce runs a single pass against the current time.
	ScanOnce(ctx context.Context) ScanReport
	// Stop cancels an in-flight pass and unregisters the periodic scan.
	Stop()
}
