package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/libcat/internal/formatter"
	"github.com/desertthunder/libcat/internal/listview"
	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/repositories"
	"github.com/desertthunder/libcat/internal/services"
	"github.com/desertthunder/libcat/internal/shared"
	"github.com/urfave/cli/v3"
)

// collectionSpec describes how the CLI lists and exports one collection.
type collectionSpec[T any] struct {
	name    string
	noun    string
	empty   string
	csvFile string
	sort    string
	newView func(listview.Sort, int) (*listview.Model[T], error)
	fetch   func(context.Context, services.Catalog) ([]T, error)
	columns func(*models.User) []formatter.Column[T]
	toCSV   func([]T) ([]byte, error)
}

func bookSpec(cfg *shared.Config) collectionSpec[models.Book] {
	return collectionSpec[models.Book]{
		name:    models.CollectionBooks,
		noun:    "books",
		empty:   "No books found.",
		csvFile: formatter.BooksCSVFile,
		sort:    cfg.View.BooksSort,
		newView: models.NewBookView,
		fetch:   func(ctx context.Context, c services.Catalog) ([]models.Book, error) { return c.ListBooks(ctx) },
		columns: formatter.BookColumns,
		toCSV:   formatter.BooksToCSV,
	}
}

func readerSpec(cfg *shared.Config) collectionSpec[models.Reader] {
	return collectionSpec[models.Reader]{
		name:    models.CollectionReaders,
		noun:    "readers",
		empty:   "No readers found.",
		csvFile: formatter.ReadersCSVFile,
		sort:    cfg.View.ReadersSort,
		newView: models.NewReaderView,
		fetch:   func(ctx context.Context, c services.Catalog) ([]models.Reader, error) { return c.ListReaders(ctx) },
		columns: func(*models.User) []formatter.Column[models.Reader] { return formatter.ReaderColumns() },
		toCSV:   formatter.ReadersToCSV,
	}
}

// loadedView is a list view populated from the server or the local snapshot.
type loadedView[T any] struct {
	view      *listview.Model[T]
	user      *models.User
	offline   bool
	fetchedAt time.Time
}

// listFlags are shared by the list and export commands of every collection.
func listFlags(withPaging bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Case-insensitive search term"},
		&cli.StringFlag{Name: "sort", Usage: "Sort as field-direction, e.g. title-asc"},
		&cli.BoolFlag{Name: "offline", Usage: "Use the last fetched snapshot instead of the server"},
		&cli.BoolFlag{Name: "reset", Usage: "Forget the saved search, sort and page first"},
	}
	if withPaging {
		flags = append(flags,
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Page number"},
			&cli.IntFlag{Name: "page-size", Aliases: []string{"n"}, Usage: "Items per page"},
			&cli.BoolFlag{Name: "json", Usage: "Output the page as JSON"},
		)
	}
	return flags
}

// loadCollection fetches the collection (or reads its snapshot), restores the saved
// view state, applies the command's flags and saves the resulting state.
func loadCollection[T any](ctx context.Context, r *Runner, cmd *cli.Command, spec collectionSpec[T]) (*loadedView[T], error) {
	store, err := r.openStore()
	if err != nil {
		return nil, err
	}

	view, err := spec.newView(r.defaultSort(spec.sort), r.config.View.PageSize)
	if err != nil {
		r.logger.Warn("configured view defaults rejected", "collection", spec.name, "error", err)
		if view, err = spec.newView(listview.Sort{}, 0); err != nil {
			return nil, err
		}
	}

	loaded := &loadedView[T]{view: view, offline: cmd.Bool("offline")}

	var items []T
	if loaded.offline {
		items, loaded.fetchedAt, err = repositories.LoadSnapshot[T](store.Snapshots, spec.name)
		if err != nil {
			return nil, err
		}
		if s, err := store.Sessions.Current(); err == nil {
			loaded.user = &s.User
		}
	} else {
		catalog, s, err := r.session()
		if err != nil {
			return nil, err
		}
		loaded.user = &s.User

		r.logger.Debug("fetching collection", "collection", spec.name)
		if items, err = spec.fetch(ctx, catalog); err != nil {
			if errors.Is(err, shared.ErrServiceUnavailable) {
				if n, cerr := store.Snapshots.Count(spec.name); cerr == nil && n > 0 {
					return nil, fmt.Errorf("%w (%d %s cached, retry with --offline)", err, n, spec.noun)
				}
			}
			return nil, r.checkAuth(err)
		}
		loaded.fetchedAt = time.Now()
		if err := repositories.SaveSnapshot(store.Snapshots, spec.name, items); err != nil {
			r.logger.Warn("failed to save snapshot", "collection", spec.name, "error", err)
		}
	}
	view.SetItems(items)

	if cmd.Bool("reset") {
		if _, err := store.ViewStates.Reset(spec.name); err != nil {
			return nil, err
		}
	} else if state, found, err := store.ViewStates.Get(spec.name); err != nil {
		r.logger.Warn("failed to read saved view state", "collection", spec.name, "error", err)
	} else if found {
		if err := view.Restore(state); err != nil {
			r.logger.Warn("discarding saved view state", "collection", spec.name, "error", err)
		}
	}

	if err := applyViewFlags(cmd, view); err != nil {
		return nil, err
	}

	if err := store.ViewStates.Save(spec.name, view.State()); err != nil {
		r.logger.Warn("failed to save view state", "collection", spec.name, "error", err)
	}
	return loaded, nil
}

// applyViewFlags applies search, sort, page size and page, in that order, so
// that an explicit page survives the reset to page 1 caused by the others.
func applyViewFlags[T any](cmd *cli.Command, view *listview.Model[T]) error {
	if cmd.IsSet("search") {
		view.SetFilter(listview.Filter{Search: cmd.String("search")})
	}

	if cmd.IsSet("sort") {
		s, err := listview.ParseSort(cmd.String("sort"))
		if err == nil {
			err = view.SetSort(s)
		}
		if err != nil {
			return fmt.Errorf("%w: --sort: %v (fields: %v)", shared.ErrInvalidFlag, err, view.Fields())
		}
	}

	if cmd.IsSet("page-size") {
		if err := view.SetPageSize(int(cmd.Int("page-size"))); err != nil {
			return fmt.Errorf("%w: --page-size: %v", shared.ErrInvalidFlag, err)
		}
	}

	if cmd.IsSet("page") {
		page := int(cmd.Int("page"))
		if !view.GoToPage(page) {
			return fmt.Errorf("%w: --page %d is outside 1-%d", shared.ErrInvalidFlag, page, view.TotalPages())
		}
	}
	return nil
}

type pageJSON[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	Total      int    `json:"total"`
	Sort       string `json:"sort"`
	Search     string `json:"search,omitempty"`
}

// listCollection prints the current page of a collection.
func listCollection[T any](ctx context.Context, r *Runner, cmd *cli.Command, spec collectionSpec[T]) error {
	loaded, err := loadCollection(ctx, r, cmd, spec)
	if err != nil {
		if errors.Is(err, shared.ErrNoSnapshot) {
			return fmt.Errorf("%w: run 'libcat %s list' while online first", err, spec.name)
		}
		return err
	}
	view := loaded.view

	if cmd.Bool("json") {
		return r.writeJSON(pageJSON[T]{
			Items:      view.CurrentPageItems(),
			Page:       view.CurrentPage(),
			PageSize:   view.PageSize(),
			TotalPages: view.TotalPages(),
			Total:      view.Len(),
			Sort:       view.Sort().String(),
			Search:     view.Filter().Search,
		}, true)
	}

	if loaded.offline {
		r.writePlain("Offline snapshot from %s\n", loaded.fetchedAt.Local().Format(time.DateTime))
	}
	if term := view.Filter().Search; term != "" {
		r.writePlain("Search: %q\n", term)
	}
	return formatter.RenderPage(r.output, view, spec.columns(loaded.user), spec.noun, spec.empty)
}

// exportCollection writes every item of the filtered and sorted view to CSV.
func exportCollection[T any](ctx context.Context, r *Runner, cmd *cli.Command, spec collectionSpec[T]) error {
	loaded, err := loadCollection(ctx, r, cmd, spec)
	if err != nil {
		return err
	}

	items := loaded.view.FilteredSorted()
	data, err := spec.toCSV(items)
	if err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}

	path, err := formatter.WriteCSVExport(cmd.String("output"), spec.csvFile, data)
	if err != nil {
		return err
	}
	r.logger.Info("exported collection", "collection", spec.name, "count", len(items), "path", path)
	return r.writePlain("✓ Exported %d %s to %s\n", len(items), spec.noun, path)
}
