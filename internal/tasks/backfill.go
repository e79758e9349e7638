package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ISBNBackfiller is the part of the catalog service the backfill tasks drive.
type ISBNBackfiller interface {
	BackfillISBN(ctx context.Context, bookID uint) (bool, error)
	BooksMissingISBN(ctx context.Context) ([]uint, error)
}

// BackfillISBNTask looks up the ISBN of a single book.
type BackfillISBNTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for ISBN backfill tasks.
func (t BackfillISBNTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "backfill_isbn",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackfillISBNProcessor creates a processor function for BackfillISBNTask.
func BackfillISBNProcessor(catalog ISBNBackfiller) backlite.QueueProcessor[BackfillISBNTask] {
	return func(ctx context.Context, task BackfillISBNTask) error {
		if catalog == nil {
			return fmt.Errorf("catalog not configured")
		}

		updated, err := catalog.BackfillISBN(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("backfill isbn for book %d: %w", task.BookID, err)
		}

		if updated {
			log.Printf("[TASK] Book %d: ISBN filled in", task.BookID)
		} else {
			log.Printf("[TASK] Book %d: no ISBN found or already set", task.BookID)
		}
		return nil
	}
}

// NewBackfillISBNQueue creates a backlite queue for single-book backfills.
func NewBackfillISBNQueue(catalog ISBNBackfiller) backlite.Queue {
	return backlite.NewQueue(BackfillISBNProcessor(catalog))
}

// BackfillAllISBNsTask covers every book without an ISBN.
type BackfillAllISBNsTask struct{}

// Config returns the queue configuration for the backfill sweep.
func (t BackfillAllISBNsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "backfill_all_isbns",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackfillResult summarizes one sweep.
type BackfillResult struct {
	Total   int
	Updated int
	Failed  int
}

// BackfillAll runs the sweep in the calling goroutine. A failing book is
// counted and skipped.
func BackfillAll(ctx context.Context, catalog ISBNBackfiller) (BackfillResult, error) {
	var result BackfillResult

	ids, err := catalog.BooksMissingISBN(ctx)
	if err != nil {
		return result, fmt.Errorf("list books missing isbn: %w", err)
	}
	result.Total = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		updated, err := catalog.BackfillISBN(ctx, id)
		if err != nil {
			log.Printf("[TASK] Book %d: ISBN backfill failed: %v", id, err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		}
	}
	return result, nil
}

// BookEnqueuer schedules a single-book backfill.
type BookEnqueuer interface {
	EnqueueISBNBackfill(ctx context.Context, bookID uint) error
}

// FanOut queues one backfill_isbn task per book without an ISBN and returns
// how many were queued.
func FanOut(ctx context.Context, catalog ISBNBackfiller, queue BookEnqueuer) (int, error) {
	ids, err := catalog.BooksMissingISBN(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books missing isbn: %w", err)
	}

	queued := 0
	for _, id := range ids {
		if err := queue.EnqueueISBNBackfill(ctx, id); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// BackfillAllISBNsProcessor creates a processor function for
// BackfillAllISBNsTask. With a queue the sweep fans out into backfill_isbn
// tasks, otherwise it runs the books one by one.
func BackfillAllISBNsProcessor(catalog ISBNBackfiller, queue BookEnqueuer) backlite.QueueProcessor[BackfillAllISBNsTask] {
	return func(ctx context.Context, task BackfillAllISBNsTask) error {
		if catalog == nil {
			return fmt.Errorf("catalog not configured")
		}

		if queue != nil {
			queued, err := FanOut(ctx, catalog, queue)
			if err != nil {
				return fmt.Errorf("backfill all isbns: %w", err)
			}
			log.Printf("[TASK] ISBN backfill: queued %d books", queued)
			return nil
		}

		result, err := BackfillAll(ctx, catalog)
		if err != nil {
			return fmt.Errorf("backfill all isbns: %w", err)
		}

		log.Printf("[TASK] ISBN backfill complete: %d total, %d updated, %d failed",
			result.Total, result.Updated, result.Failed)
		return nil
	}
}

// NewBackfillAllISBNsQueue creates a backlite queue for the backfill sweep.
func NewBackfillAllISBNsQueue(catalog ISBNBackfiller, queue BookEnqueuer) backlite.Queue {
	return backlite.NewQueue(BackfillAllISBNsProcessor(catalog, queue))
}
