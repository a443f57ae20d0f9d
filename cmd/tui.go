package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/libcat/internal/listview"
	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/repositories"
	"github.com/desertthunder/libcat/internal/shared"
	"github.com/desertthunder/libcat/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	catalog, s, err := r.session()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(r.config.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	shared.SetLogLevel(fileLogger, shared.ParseLevel(r.config.Logging.Level))
	r.SetLogger(fileLogger)

	books, err := models.NewBookView(r.defaultSort(r.config.View.BooksSort), r.config.View.PageSize)
	if err != nil {
		return err
	}
	readers, err := models.NewReaderView(r.defaultSort(r.config.View.ReadersSort), r.config.View.PageSize)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Options{
		Catalog:      catalog,
		Engine:       r.engine(catalog),
		User:         &s.User,
		Books:        books,
		Readers:      readers,
		SavedBooks:   r.savedState(r.store, models.CollectionBooks),
		SavedReaders: r.savedState(r.store, models.CollectionReaders),
		States:       r.store.ViewStates,
		Logger:       fileLogger,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := model.Err(); err != nil {
		fileLogger.Warn("TUI exited with error", "error", err)
		r.checkAuth(err)
	}
	return nil
}

// defaultSort parses a configured sort token; an invalid one falls back to the collection default.
func (r *Runner) defaultSort(token string) listview.Sort {
	s, err := listview.ParseSort(token)
	if err != nil {
		r.logger.Warn("ignoring configured sort", "sort", token, "error", err)
		return listview.Sort{}
	}
	return s
}

func (r *Runner) savedState(store *repositories.Store, collection string) *listview.State {
	state, found, err := store.ViewStates.Get(collection)
	if err != nil {
		r.logger.Warn("failed to read saved view state", "collection", collection, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	return &state
}
