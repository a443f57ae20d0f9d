package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/libcat/internal/shared"
	"golang.org/x/time/rate"
)

// Worker and rate limits applied when options leave them unset.
const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// BulkOpts configures a bulk operation.
type BulkOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

func (o BulkOpts) normalize() BulkOpts {
	if o.NumWorkers <= 0 {
		o.NumWorkers = defaultWorkers
	}
	o.NumWorkers = min(o.NumWorkers, maxWorkers)
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	return o
}

// ItemResult is the outcome for one ID of a bulk operation.
type ItemResult struct {
	ID      uint
	Success bool
	Error   error
}

// BulkResult summarizes a bulk operation. Results are in completion order.
type BulkResult struct {
	Phase     Phase
	Total     int
	Succeeded int
	Failed    int
	Results   []ItemResult
}

// Errors returns the failed results.
func (r *BulkResult) Errors() []ItemResult {
	var out []ItemResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// AssignBooks adds each book to the reader's currently-reading list.
func (e *CatalogEngine) AssignBooks(ctx context.Context, prog chan<- ProgressUpdate, readerID uint, bookIDs []uint, opts BulkOpts) (*BulkResult, error) {
	return e.runBulk(ctx, prog, AssignBooks, bookIDs, opts, func(ctx context.Context, id uint) error {
		return e.catalog.AddCurrentlyReading(ctx, readerID, id)
	})
}

// UnassignBooks removes each book from the reader's currently-reading list.
func (e *CatalogEngine) UnassignBooks(ctx context.Context, prog chan<- ProgressUpdate, readerID uint, bookIDs []uint, opts BulkOpts) (*BulkResult, error) {
	return e.runBulk(ctx, prog, UnassignBooks, bookIDs, opts, func(ctx context.Context, id uint) error {
		return e.catalog.RemoveCurrentlyReading(ctx, readerID, id)
	})
}

// DeleteBooks deletes each book by ID.
func (e *CatalogEngine) DeleteBooks(ctx context.Context, prog chan<- ProgressUpdate, ids []uint, opts BulkOpts) (*BulkResult, error) {
	return e.runBulk(ctx, prog, DeleteBooks, ids, opts, e.catalog.DeleteBook)
}

// DeleteReaders deletes each reader by ID.
func (e *CatalogEngine) DeleteReaders(ctx context.Context, prog chan<- ProgressUpdate, ids []uint, opts BulkOpts) (*BulkResult, error) {
	return e.runBulk(ctx, prog, DeleteReaders, ids, opts, e.catalog.DeleteReader)
}

// runBulk applies fn to every id with a worker pool, starting at most opts.RateLimit calls per second.
//
// Per-item failures are recorded in the result. The returned error is non-nil only
// when ctx ends before every id was attempted.
func (e *CatalogEngine) runBulk(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	phase Phase,
	ids []uint,
	opts BulkOpts,
	fn func(ctx context.Context, id uint) error,
) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids given", shared.ErrMissingArgument)
	}

	opts = opts.normalize()
	result := &BulkResult{Phase: phase, Total: len(ids), Results: make([]ItemResult, 0, len(ids))}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan uint)
	results := make(chan ItemResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				err := fn(ctx, id)
				results <- ItemResult{ID: id, Success: err == nil, Error: err}
			}
		}()
	}

	// stopErr is written before jobs is closed and read after results drain.
	var stopErr error
	go func() {
		defer close(jobs)
		e.sendProgress(prog, bulkStartUpdate(phase, len(ids)))
		for _, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				stopErr = err
				return
			}
			select {
			case jobs <- id:
			case <-ctx.Done():
				stopErr = ctx.Err()
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Results = append(result.Results, res)
		if res.Success {
			result.Succeeded++
		} else {
			result.Failed++
			e.logger.Warn("bulk item failed", "phase", phase, "id", res.ID, "err", res.Error)
		}
		e.sendProgress(prog, bulkItemUpdate(phase, len(result.Results), len(ids), res))
	}

	if attempted := len(result.Results); attempted < len(ids) {
		return result, fmt.Errorf("%s interrupted after %d of %d: %w", phase, attempted, len(ids), stopErr)
	}
	return result, nil
}
