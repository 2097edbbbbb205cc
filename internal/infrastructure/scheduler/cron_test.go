package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"memento/internal/pkg/logger"
)

func TestAddAndRemoveJob(t *testing.T) {
	s := NewScheduler(logger.NewNop())

	id, err := s.Every(2*time.Second, func() {})
	if err != nil {
		t.Fatalf("Every error = %v", err)
	}
	if got := len(s.GetEntries()); got != 1 {
		t.Fatalf("GetEntries has %d entries, want 1", got)
	}
	s.RemoveJob(id)
	if got := len(s.GetEntries()); got != 0 {
		t.Fatalf("GetEntries has %d entries after RemoveJob, want 0", got)
	}
}

func TestInvalidSpecs(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	if _, err := s.AddJob("not a spec", func() {}); err == nil {
		t.Fatalf("AddJob accepted an invalid spec")
	}
	if _, err := s.Every(0, func() {}); err == nil {
		t.Fatalf("Every accepted a zero interval")
	}
}

func TestJobRunsAfterStart(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	var runs int32
	if _, err := s.Every(time.Second, func() { atomic.AddInt32(&runs, 1) }); err != nil {
		t.Fatalf("Every error = %v", err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&runs) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("job did not run within 5s")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	s.Stop()
}
