package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/libcat/internal/formatter"
	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/shared"
	"github.com/desertthunder/libcat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ReadersList prints one page of readers.
func (r *Runner) ReadersList(ctx context.Context, cmd *cli.Command) error {
	return listCollection(ctx, r, cmd, readerSpec(r.config))
}

// ReadersExport writes the filtered and sorted readers to CSV.
func (r *Runner) ReadersExport(ctx context.Context, cmd *cli.Command) error {
	return exportCollection(ctx, r, cmd, readerSpec(r.config))
}

// ReadersGet prints a reader and their reading list.
func (r *Runner) ReadersGet(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.Args().First(), "reader id")
	if err != nil {
		return err
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	reader, err := catalog.GetReader(ctx, id)
	if err != nil {
		return r.checkAuth(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(reader, true)
	}
	r.writePlainHeader(fmt.Sprintf("#%d %s", reader.ID, reader.FullName()))
	if len(reader.CurrentlyReading) == 0 {
		return r.writePlain("Not reading anything.\n")
	}
	r.writePlain("Currently reading:\n")
	return r.writePlain("%s\n", formatter.RenderTable(reader.CurrentlyReading, formatter.BookColumns(nil)))
}

// ReadersCreate adds a reader.
func (r *Runner) ReadersCreate(ctx context.Context, cmd *cli.Command) error {
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	in := models.ReaderInput{Name: cmd.String("name"), Surname: cmd.String("surname")}
	reader, err := catalog.CreateReader(ctx, in)
	if err != nil {
		return r.checkAuth(err)
	}

	r.logger.Info("created reader", "id", reader.ID)
	return r.writePlain("✓ Created reader #%d: %s\n", reader.ID, reader.FullName())
}

// ReadersUpdate changes the name and/or surname of a reader, keeping unset fields.
func (r *Runner) ReadersUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.Args().First(), "reader id")
	if err != nil {
		return err
	}
	if !cmd.IsSet("name") && !cmd.IsSet("surname") {
		return fmt.Errorf("%w: pass --name and/or --surname", shared.ErrMissingArgument)
	}

	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	current, err := catalog.GetReader(ctx, id)
	if err != nil {
		return r.checkAuth(err)
	}

	in := models.ReaderInput{Name: current.Name, Surname: current.Surname}
	if cmd.IsSet("name") {
		in.Name = cmd.String("name")
	}
	if cmd.IsSet("surname") {
		in.Surname = cmd.String("surname")
	}

	reader, err := catalog.UpdateReader(ctx, id, in)
	if err != nil {
		return r.checkAuth(err)
	}
	return r.writePlain("✓ Updated reader #%d: %s\n", reader.ID, reader.FullName())
}

// ReadersDelete deletes one reader, or several with a bounded worker pool.
func (r *Runner) ReadersDelete(ctx context.Context, cmd *cli.Command) error {
	ids, err := parseIDs(cmd.Args().Slice(), "reader id")
	if err != nil {
		return err
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		if err := catalog.DeleteReader(ctx, ids[0]); err != nil {
			return r.checkAuth(err)
		}
		return r.writePlain("✓ Deleted reader #%d\n", ids[0])
	}

	engine := r.engine(catalog)
	return r.runBulk(func(progress chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error) {
		return engine.DeleteReaders(ctx, progress, ids, r.bulkOpts())
	})
}

// ReadersDeleteAll removes every reader.
func (r *Runner) ReadersDeleteAll(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete every reader", shared.ErrMissingArgument)
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}
	if err := catalog.DeleteAllReaders(ctx); err != nil {
		return r.checkAuth(err)
	}
	return r.writePlain("✓ Deleted all readers\n")
}

// readingArgs parses "<reader-id> <book-id>..." positional arguments.
func readingArgs(cmd *cli.Command) (uint, []uint, error) {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return 0, nil, fmt.Errorf("%w: expected <reader-id> <book-id>...", shared.ErrMissingArgument)
	}
	readerID, err := parseID(args[0], "reader id")
	if err != nil {
		return 0, nil, err
	}
	bookIDs, err := parseIDs(args[1:], "book id")
	if err != nil {
		return 0, nil, err
	}
	return readerID, bookIDs, nil
}

// ReadingAdd puts books on a reader's currently-reading list.
func (r *Runner) ReadingAdd(ctx context.Context, cmd *cli.Command) error {
	readerID, bookIDs, err := readingArgs(cmd)
	if err != nil {
		return err
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	if len(bookIDs) == 1 {
		if err := catalog.AddCurrentlyReading(ctx, readerID, bookIDs[0]); err != nil {
			return r.checkAuth(err)
		}
		return r.writePlain("✓ Reader #%d is now reading book #%d\n", readerID, bookIDs[0])
	}

	engine := r.engine(catalog)
	return r.runBulk(func(progress chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error) {
		return engine.AssignBooks(ctx, progress, readerID, bookIDs, r.bulkOpts())
	})
}

// ReadingRemove takes books off a reader's currently-reading list.
func (r *Runner) ReadingRemove(ctx context.Context, cmd *cli.Command) error {
	readerID, bookIDs, err := readingArgs(cmd)
	if err != nil {
		return err
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	if len(bookIDs) == 1 {
		if err := catalog.RemoveCurrentlyReading(ctx, readerID, bookIDs[0]); err != nil {
			return r.checkAuth(err)
		}
		return r.writePlain("✓ Reader #%d is no longer reading book #%d\n", readerID, bookIDs[0])
	}

	engine := r.engine(catalog)
	return r.runBulk(func(progress chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error) {
		return engine.UnassignBooks(ctx, progress, readerID, bookIDs, r.bulkOpts())
	})
}

// ReadingAvailable lists the books a reader is not already reading.
func (r *Runner) ReadingAvailable(ctx context.Context, cmd *cli.Command) error {
	readerID, err := parseID(cmd.Args().First(), "reader id")
	if err != nil {
		return err
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	books, err := catalog.AvailableBooks(ctx, readerID)
	if err != nil {
		return r.checkAuth(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(books, true)
	}
	if len(books) == 0 {
		return r.writePlain("No books available.\n")
	}
	return r.writePlain("%s\n", formatter.RenderTable(books, formatter.BookColumns(nil)))
}

// readersCommand handles reader operations
func readersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "readers",
		Aliases: []string{"reader", "r"},
		Usage:   "List and manage readers",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List readers one page at a time",
				Flags:   listFlags(true),
				Action:  r.ReadersList,
			},
			{
				Name:      "get",
				Usage:     "Show a reader and what they are reading",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ReadersGet,
			},
			{
				Name:  "create",
				Usage: "Add a reader",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "First name (1-100 characters)", Required: true},
					&cli.StringFlag{Name: "surname", Usage: "Surname (1-100 characters)", Required: true},
				},
				Action: r.ReadersCreate,
			},
			{
				Name:      "update",
				Usage:     "Edit a reader",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New first name"},
					&cli.StringFlag{Name: "surname", Usage: "New surname"},
				},
				Action: r.ReadersUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete one or more readers",
				ArgsUsage: "<id>...",
				Action:    r.ReadersDelete,
			},
			{
				Name:  "delete-all",
				Usage: "Delete every reader",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm deletion"},
				},
				Action: r.ReadersDeleteAll,
			},
			{
				Name:  "export",
				Usage: "Export the filtered and sorted readers to CSV",
				Flags: append(listFlags(false),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default: readers.csv)"},
				),
				Action: r.ReadersExport,
			},
			{
				Name:  "reading",
				Usage: "Manage what a reader is currently reading",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add books to a reader's list",
						ArgsUsage: "<reader-id> <book-id>...",
						Action:    r.ReadingAdd,
					},
					{
						Name:      "remove",
						Aliases:   []string{"rm"},
						Usage:     "Remove books from a reader's list",
						ArgsUsage: "<reader-id> <book-id>...",
						Action:    r.ReadingRemove,
					},
					{
						Name:      "available",
						Usage:     "List books the reader is not reading yet",
						ArgsUsage: "<reader-id>",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
						},
						Action: r.ReadingAvailable,
					},
				},
			},
		},
	}
}
