package main

import (
	"context"
	"time"

	"github.com/desertthunder/libcat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Stats prints the total number of books and readers and how many were created today.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	catalog, _, err := r.session()
	if err != nil {
		return err
	}
	asJSON := cmd.Bool("json")

	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if !asJSON && update.Phase != tasks.Aggregate {
				r.writePlain("📥 %s\n", update.Message)
			}
		}
	}()

	stats, err := r.engine(catalog).Statistics(ctx, progress, time.Now())
	close(progress)
	<-done

	if err != nil {
		return r.checkAuth(err)
	}

	if asJSON {
		return r.writeJSON(stats, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Catalog Statistics")
	r.writePlain("Books:   %d (%d added today)\n", stats.TotalBooks, stats.BooksToday)
	return r.writePlain("Readers: %d (%d added today)\n", stats.TotalReaders, stats.ReadersToday)
}
