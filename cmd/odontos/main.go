package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexanderramin/odontos/internal/cli"
	"github.com/alexanderramin/odontos/internal/cli/formatter"
	"github.com/alexanderramin/odontos/internal/config"
	"github.com/alexanderramin/odontos/internal/db"
	"github.com/alexanderramin/odontos/internal/repository"
	"github.com/alexanderramin/odontos/internal/scheduler"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var database *sql.DB
	defer func() {
		if database != nil {
			database.Close()
		}
	}()

	app := &cli.App{}
	app.Configure = func(flags cli.GlobalFlags) error {
		cfg, err := config.Load(flags.ConfigPath)
		if err != nil {
			return err
		}
		if flags.DBPath != "" {
			cfg.DBPath = flags.DBPath
		}

		if flags.Plain || !isTerminal(os.Stdout) {
			formatter.DisableColor()
		}
		if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
			app.Prompt = cli.HuhPrompter{}
		}

		logger, err := newLogger(cfg, flags.Verbose)
		if err != nil {
			return err
		}
		sessionCfg, err := newSessionConfig(cfg)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		database, err = db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}

		app.Plans = service.NewPlanService(
			repository.NewSQLitePatientRepo(database),
			db.NewSQLiteUnitOfWork(database),
			sessionCfg,
			service.NewSlogUseCaseObserver(logger),
		)
		app.Catalog = sessionCfg.Catalog
		app.Rules = sessionCfg.Rules
		return nil
	}

	return cli.NewRootCmd(app).Execute()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newLogger discards engine telemetry unless verbose is set, in which case
// it goes to stderr at the configured level.
func newLogger(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if !verbose {
		return slog.New(slog.DiscardHandler), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// newSessionConfig resolves rules, grouping and catalog from cfg. Sessions
// use the deterministic strategy; an external planner would be wrapped with
// scheduler.WithFallback here.
func newSessionConfig(cfg *config.Config) (service.SessionConfig, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return service.SessionConfig{}, err
	}
	grouping, err := cfg.Grouping()
	if err != nil {
		return service.SessionConfig{}, err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return service.SessionConfig{}, err
	}
	return service.SessionConfig{
		Catalog:     cat,
		Rules:       rules,
		Grouping:    grouping,
		AutoCascade: cfg.AutoCascade,
		Strategy:    scheduler.Deterministic{},
	}, nil
}
