package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/config"
	"github.com/example/internlog/internal/logging"
	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/persistence/mongo"
	"github.com/example/internlog/internal/persistence/sqlite"
	"github.com/example/internlog/internal/persistence/sqlite/migration"
)

// App holds the CLI state shared by every sub-command.
type App struct {
	root       *cobra.Command
	configPath string

	cfg    config.Config
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func newApp() *App {
	a := &App{now: time.Now, newID: uuid.NewString}

	a.root = &cobra.Command{
		Use:   "internlog",
		Short: "Internship work log and monthly report generator",
		Long: `internlog records daily internship tasks with their working hours and
produces the monthly progress report as a PDF.

Run "internlog serve" for the JSON API used by the web front end, or use the
tasks, summary and report commands directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd.ErrOrStderr())
		},
	}

	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML config file (defaults to $"+config.EnvConfigPath+")")

	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.migrateCmd())
	a.root.AddCommand(a.tasksCmd())
	a.root.AddCommand(a.summaryCmd())
	a.root.AddCommand(a.reportCmd())
	a.root.AddCommand(a.versionCmd())

	return a
}

// ExecuteContext runs the command tree.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

func (a *App) configure(logOutput io.Writer) error {
	var (
		cfg config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(logOutput, level, cfg.Log.Format).With("app", "internlog")
	return nil
}

// openStore connects to the configured backend without migrating it.
func (a *App) openStore(ctx context.Context) (persistence.Store, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverMongo:
		store, err := mongo.Open(ctx, mongo.Config{URI: a.cfg.Storage.MongoURI, Database: a.cfg.Storage.MongoDatabase}, a.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		storage, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(a.cfg.Storage.SQLitePath), a.logger)
		if err != nil {
			return nil, err
		}
		return storage, nil
	}
}

// services bundles the application layer over one open store.
type services struct {
	store    persistence.Store
	tasks    *application.TaskService
	profiles *application.ProfileService
	reports  *application.ReportService
}

// withServices opens and migrates the store, runs fn, and closes the store.
func (a *App) withServices(ctx context.Context, fn func(ctx context.Context, svc services) error) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", a.cfg.Storage.Driver, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating storage: %w", err)
	}

	return fn(ctx, a.buildServices(store))
}

func (a *App) buildServices(store persistence.Store) services {
	taskRepo := newTaskRepositoryAdapter(store)
	profileRepo := newProfileRepositoryAdapter(store)
	cache := application.NewSummaryCache(a.cfg.Report.CacheSize, a.cfg.Report.CacheTTL.Std())

	taskService := application.NewTaskServiceWithLogger(taskRepo, a.newID, a.now, a.logger)
	taskService.InvalidateOnWrite(cache)

	return services{
		store:    store,
		tasks:    taskService,
		profiles: application.NewProfileServiceWithLogger(profileRepo, a.newID, a.now, a.logger),
		reports: application.NewReportServiceWithLogger(taskRepo, profileRepo, nil, application.ReportOptions{
			PageSize: a.cfg.Report.PageSize,
			Cache:    cache,
		}, a.now, a.logger),
	}
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "internlog %s (commit: %s)\n", Version, Commit)
		},
	}
}
