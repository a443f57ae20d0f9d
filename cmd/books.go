package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/shared"
	"github.com/desertthunder/libcat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// BooksList prints one page of books.
func (r *Runner) BooksList(ctx context.Context, cmd *cli.Command) error {
	return listCollection(ctx, r, cmd, bookSpec(r.config))
}

// BooksExport writes the filtered and sorted books to CSV.
func (r *Runner) BooksExport(ctx context.Context, cmd *cli.Command) error {
	return exportCollection(ctx, r, cmd, bookSpec(r.config))
}

// BooksGet prints a single book.
func (r *Runner) BooksGet(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.Args().First(), "book id")
	if err != nil {
		return err
	}
	catalog, s, err := r.session()
	if err != nil {
		return err
	}

	book, err := catalog.GetBook(ctx, id)
	if err != nil {
		return r.checkAuth(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(book, true)
	}
	r.writePlainHeader(fmt.Sprintf("#%d %s", book.ID, book.Title))
	if book.Description != "" {
		r.writePlain("%s\n", book.Description)
	}
	if book.Username != "" {
		r.writePlain("Added by: %s\n", book.Username)
	}
	if book.CanEdit(&s.User) {
		r.writePlain("You can edit this book.\n")
	}
	return nil
}

// BooksCreate adds a book owned by the signed-in user.
func (r *Runner) BooksCreate(ctx context.Context, cmd *cli.Command) error {
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	in := models.BookInput{Title: cmd.String("title"), Description: cmd.String("description")}
	book, err := catalog.CreateBook(ctx, in)
	if err != nil {
		return r.checkAuth(err)
	}

	r.logger.Info("created book", "id", book.ID)
	return r.writePlain("✓ Created book #%d: %s\n", book.ID, book.Title)
}

// BooksUpdate changes the title and/or description of a book, keeping unset fields.
func (r *Runner) BooksUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.Args().First(), "book id")
	if err != nil {
		return err
	}
	if !cmd.IsSet("title") && !cmd.IsSet("description") {
		return fmt.Errorf("%w: pass --title and/or --description", shared.ErrMissingArgument)
	}

	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	current, err := catalog.GetBook(ctx, id)
	if err != nil {
		return r.checkAuth(err)
	}

	in := models.BookInput{Title: current.Title, Description: current.Description}
	if cmd.IsSet("title") {
		in.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		in.Description = cmd.String("description")
	}

	book, err := catalog.UpdateBook(ctx, id, in)
	if err != nil {
		return r.checkAuth(err)
	}
	return r.writePlain("✓ Updated book #%d: %s\n", book.ID, book.Title)
}

// BooksDelete deletes one book, or several with a bounded worker pool.
func (r *Runner) BooksDelete(ctx context.Context, cmd *cli.Command) error {
	ids, err := parseIDs(cmd.Args().Slice(), "book id")
	if err != nil {
		return err
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		if err := catalog.DeleteBook(ctx, ids[0]); err != nil {
			return r.checkAuth(err)
		}
		return r.writePlain("✓ Deleted book #%d\n", ids[0])
	}

	engine := r.engine(catalog)
	return r.runBulk(func(progress chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error) {
		return engine.DeleteBooks(ctx, progress, ids, r.bulkOpts())
	})
}

// BooksDeleteAll removes every book the server lets the user delete.
func (r *Runner) BooksDeleteAll(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete every book", shared.ErrMissingArgument)
	}
	catalog, _, err := r.session()
	if err != nil {
		return err
	}
	if err := catalog.DeleteAllBooks(ctx); err != nil {
		return r.checkAuth(err)
	}
	return r.writePlain("✓ Deleted all books\n")
}

// runBulk prints progress while run executes and fails when any item failed.
func (r *Runner) runBulk(run func(chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error)) error {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := run(progress)
	close(progress)
	<-done

	if err != nil {
		return r.checkAuth(err)
	}

	r.writePlain("\n%d/%d succeeded\n", result.Succeeded, result.Total)
	if failed := result.Errors(); len(failed) > 0 {
		r.checkAuth(failed[0].Error)
		return fmt.Errorf("%w: %d of %d items failed", shared.ErrAPIRequest, result.Failed, result.Total)
	}
	return nil
}

// booksCommand handles book operations
func booksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "books",
		Aliases: []string{"book", "b"},
		Usage:   "List and manage books",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List books one page at a time",
				Flags:   listFlags(true),
				Action:  r.BooksList,
			},
			{
				Name:      "get",
				Usage:     "Show a book",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.BooksGet,
			},
			{
				Name:  "create",
				Usage: "Add a book",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Title (1-255 characters)", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description (up to 1000 characters)"},
				},
				Action: r.BooksCreate,
			},
			{
				Name:      "update",
				Usage:     "Edit a book",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
				},
				Action: r.BooksUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete one or more books",
				ArgsUsage: "<id>...",
				Action:    r.BooksDelete,
			},
			{
				Name:  "delete-all",
				Usage: "Delete every book",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm deletion"},
				},
				Action: r.BooksDeleteAll,
			},
			{
				Name:  "export",
				Usage: "Export the filtered and sorted books to CSV",
				Flags: append(listFlags(false),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default: books.csv)"},
				),
				Action: r.BooksExport,
			},
		},
	}
}
