package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libcat/internal/formatter"
	"github.com/desertthunder/libcat/internal/repositories"
	"github.com/desertthunder/libcat/internal/services"
	"github.com/desertthunder/libcat/internal/shared"
	"github.com/desertthunder/libcat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      *repositories.Store
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	// Store is opened from Config.Database on first use when nil.
	Store      *repositories.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, booksCommand, readersCommand, statsCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the database opened by the runner, if any.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.store = nil
	return err
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// openStore returns the local store, opening the database and running migrations on first use.
func (r *Runner) openStore() (*repositories.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	r.db = db
	r.store = repositories.NewStore(db)
	r.logger.Debug("opened local database", "path", r.config.Database.Path)
	return r.store, nil
}

// anonymous returns a catalog client without credentials, for register and login.
func (r *Runner) anonymous() *services.CatalogService {
	api := services.NewAPIService(r.config.API.BaseURL, r.httpClient)
	return services.NewCatalogService(api, r.logger)
}

// session returns a catalog client authorized with the stored session.
func (r *Runner) session() (*services.CatalogService, *repositories.Session, error) {
	store, err := r.openStore()
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Sessions.Current()
	if errors.Is(err, shared.ErrNoSession) {
		return nil, nil, fmt.Errorf("%w: run 'libcat auth login' first", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, nil, err
	}
	return r.anonymous().WithToken(s.Token), s, nil
}

// engine builds a task engine over catalog.
func (r *Runner) engine(catalog tasks.CatalogClient) *tasks.CatalogEngine {
	return tasks.NewCatalogEngine(catalog, r.logger)
}

func (r *Runner) bulkOpts() tasks.BulkOpts {
	return tasks.BulkOpts{NumWorkers: r.config.API.Workers, RateLimit: r.config.API.RateLimit}
}

// checkAuth clears the stored session when the server rejected its token, and returns err unchanged.
func (r *Runner) checkAuth(err error) error {
	if err == nil || !services.IsUnauthorized(err) || r.store == nil {
		return err
	}
	if clearErr := r.store.Sessions.Clear(); clearErr != nil {
		r.logger.Warn("failed to clear expired session", "error", clearErr)
	} else {
		r.logger.Info("cleared expired session")
	}
	return err
}

// parseIDs converts positional arguments into catalog IDs.
func parseIDs(args []string, name string) ([]uint, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one %s is required", shared.ErrMissingArgument, name)
	}

	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(arg, name string) (uint, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, arg)
	}
	return uint(id), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := formatter.ToJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
