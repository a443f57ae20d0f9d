package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/libcat/internal/models"
)

// Stats are the aggregate counts shown on the statistics view.
type Stats struct {
	TotalBooks   int       `json:"total_books"`
	TotalReaders int       `json:"total_readers"`
	BooksToday   int       `json:"books_today"`
	ReadersToday int       `json:"readers_today"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Statistics fetches books then readers and counts totals and items created on now's calendar day.
//
// Either fetch failing fails the whole operation.
func (e *CatalogEngine) Statistics(ctx context.Context, prog chan<- ProgressUpdate, now time.Time) (*Stats, error) {
	e.sendProgress(prog, fetchCollectionUpdate(FetchBooks, 1, 3))
	books, err := e.catalog.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}

	e.sendProgress(prog, fetchCollectionUpdate(FetchReaders, 2, 3))
	readers, err := e.catalog.ListReaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load readers: %w", err)
	}

	stats := &Stats{
		TotalBooks:   len(books),
		TotalReaders: len(readers),
		BooksToday:   models.CountCreatedOn(books, now),
		ReadersToday: models.CountCreatedOn(readers, now),
		GeneratedAt:  now,
	}

	e.sendProgress(prog, aggregateUpdate(3, 3, stats))
	e.logger.Debug("statistics computed", "books", stats.TotalBooks, "readers", stats.TotalReaders)
	return stats, nil
}
