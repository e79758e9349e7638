package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBackfiller struct {
	mu      sync.Mutex
	checked []uint
	done    chan struct{}
}

func (c *countingBackfiller) BackfillISBN(ctx context.Context, bookID uint) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = append(c.checked, bookID)
	if len(c.checked) == 2 {
		close(c.done)
	}
	return true, nil
}

func (c *countingBackfiller) BooksMissingISBN(ctx context.Context) ([]uint, error) {
	return []uint{1, 2}, nil
}

type recordingQueue struct {
	calls chan struct{}
}

func (q *recordingQueue) EnqueueBackfillAll(ctx context.Context) (string, error) {
	q.calls <- struct{}{}
	return "task-1", nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"))
	assert.Error(t, ValidateSchedule("every day"))
}

func TestISBNBackfillScheduler_DisabledWithoutSchedule(t *testing.T) {
	s := NewISBNBackfillScheduler("", &countingBackfiller{}, nil)

	require.NoError(t, s.Start(context.Background()))

	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestISBNBackfillScheduler_InvalidSchedule(t *testing.T) {
	s := NewISBNBackfillScheduler("not a schedule", &countingBackfiller{}, nil)

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestISBNBackfillScheduler_StartStop(t *testing.T) {
	s := NewISBNBackfillScheduler("0 3 * * *", &countingBackfiller{}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestISBNBackfillScheduler_StopsWithContext(t *testing.T) {
	s := NewISBNBackfillScheduler("0 3 * * *", &countingBackfiller{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestISBNBackfillScheduler_RunNowInline(t *testing.T) {
	backfiller := &countingBackfiller{done: make(chan struct{})}
	s := NewISBNBackfillScheduler("0 3 * * *", backfiller, nil)

	s.RunNow()

	select {
	case <-backfiller.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not run")
	}
	assert.ElementsMatch(t, []uint{1, 2}, backfiller.checked)
}

func TestISBNBackfillScheduler_RunNowQueued(t *testing.T) {
	queue := &recordingQueue{calls: make(chan struct{}, 1)}
	s := NewISBNBackfillScheduler("0 3 * * *", &countingBackfiller{}, queue)

	s.RunNow()

	select {
	case <-queue.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep was not queued")
	}
}

type slowBackfiller struct {
	started   chan struct{}
	once      sync.Once
	cancelled chan struct{}
}

func (b *slowBackfiller) BackfillISBN(ctx context.Context, bookID uint) (bool, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-ctx.Done():
		select {
		case b.cancelled <- struct{}{}:
		default:
		}
		return false, ctx.Err()
	case <-time.After(300 * time.Millisecond):
		return true, nil
	}
}

func (b *slowBackfiller) BooksMissingISBN(ctx context.Context) ([]uint, error) {
	return []uint{1, 2, 3, 4, 5}, nil
}

func TestISBNBackfillScheduler_StopDuringScheduledSweep(t *testing.T) {
	backfiller := &slowBackfiller{started: make(chan struct{}), cancelled: make(chan struct{}, 1)}
	s := NewISBNBackfillScheduler("0 3 * * *", backfiller, nil)
	require.NoError(t, s.Start(context.Background()))

	// A one second schedule so the sweep is started by cron itself
	s.cron.Schedule(cron.Every(time.Second), cron.FuncJob(s.runSweep))

	select {
	case <-backfiller.started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled sweep did not start")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return while a scheduled sweep was running")
	}

	assert.False(t, s.IsRunning())
	select {
	case <-backfiller.cancelled:
	default:
		t.Fatal("running sweep was not cancelled by Stop")
	}
}
