package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/desertthunder/libcat/internal/services"
	"github.com/desertthunder/libcat/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger, ConfigPath: defaultConfigPath})
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runner.app().Run(ctx, os.Args); err != nil {
		var validation *services.ValidationError
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
		case errors.As(err, &validation):
			for _, f := range validation.Errors {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
			}
			runner.Close()
			os.Exit(1)
		default:
			runner.Close()
			logger.Fatalf("application error: %v", err)
		}
	}
}

// app builds the root command. Its Before hook loads the config file named by
// --config (when present), applies LIBCAT_* overrides and sets the log level.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "libcat",
		Usage:   "Browse and manage a library catalog of books and readers",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, r.configure(cmd.String("config"), cmd.IsSet("config"), cmd.String("log-level"))
		},
		Commands: r.register(),
	}
}

// configure loads path into the runner config. A missing file is an error only when it was named explicitly.
func (r *Runner) configure(path string, explicit bool, level string) error {
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		r.config = config
		r.configPath = path
		r.httpClient.Timeout = config.API.Timeout()
	} else if explicit {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	r.config.ApplyEnv()
	if level == "" {
		level = r.config.Logging.Level
	}
	shared.SetLogLevel(r.logger, shared.ParseLevel(level))
	return nil
}
