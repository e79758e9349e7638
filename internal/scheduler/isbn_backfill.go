// Package scheduler runs periodic catalog maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/catalog/internal/tasks"
)

// SweepEnqueuer hands the sweep to the task queue instead of running it in
// the cron goroutine.
type SweepEnqueuer interface {
	EnqueueBackfillAll(ctx context.Context) (string, error)
}

// ISBNBackfillScheduler periodically fills in missing ISBNs.
type ISBNBackfillScheduler struct {
	schedule string
	catalog  tasks.ISBNBackfiller
	queue    SweepEnqueuer

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	sweepCtx   context.Context
	cancelFunc context.CancelFunc
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NewISBNBackfillScheduler creates a new scheduler instance. queue may be nil,
// in which case the sweep runs inline.
func NewISBNBackfillScheduler(schedule string, catalog tasks.ISBNBackfiller, queue SweepEnqueuer) *ISBNBackfillScheduler {
	return &ISBNBackfillScheduler{
		schedule: schedule,
		catalog:  catalog,
		queue:    queue,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler. An empty schedule leaves it disabled.
func (s *ISBNBackfillScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("ISBN backfill scheduler: disabled")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runSweep)
	if err != nil {
		return fmt.Errorf("failed to schedule backfill job: %w", err)
	}
	s.entryID = entryID

	cancelCtx, cancel := context.WithCancel(ctx)
	s.sweepCtx = cancelCtx
	s.cancelFunc = cancel

	s.cron.Start()
	s.isRunning = true

	log.Printf("ISBN backfill scheduler: started with schedule '%s'. Next run: %v",
		s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop cancels a running sweep, waits for it to return and stops the
// scheduler.
func (s *ISBNBackfillScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.sweepCtx = nil
	entryID := s.entryID
	s.mu.Unlock()

	// The sweep takes s.mu when it finishes, so wait without holding it
	cancel()
	<-s.cron.Stop().Done()
	s.cron.Remove(entryID)

	log.Printf("ISBN backfill scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *ISBNBackfillScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *ISBNBackfillScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will occur.
func (s *ISBNBackfillScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

func (s *ISBNBackfillScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("ISBN backfill: skipped (already running)")
		return
	}
	s.isSweeping = true
	parent := s.sweepCtx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, time.Hour)
	defer cancel()

	if s.queue != nil {
		id, err := s.queue.EnqueueBackfillAll(ctx)
		if err != nil {
			log.Printf("ISBN backfill: %v", err)
			return
		}
		log.Printf("ISBN backfill: queued sweep as task %s", id)
		return
	}

	startTime := time.Now()
	result, err := tasks.BackfillAll(ctx, s.catalog)
	if err != nil {
		log.Printf("ISBN backfill: failed: %v", err)
		return
	}
	log.Printf("ISBN backfill: %d books checked, %d updated, %d failed in %v",
		result.Total, result.Updated, result.Failed, time.Since(startTime).Round(time.Millisecond))
}
