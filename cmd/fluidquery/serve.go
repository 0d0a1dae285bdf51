package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pakkasys/fluidquery/config"
	"github.com/pakkasys/fluidquery/database"
	"github.com/pakkasys/fluidquery/logging"
	"github.com/pakkasys/fluidquery/metrics"
	"github.com/pakkasys/fluidquery/mysql"
	"github.com/pakkasys/fluidquery/server"
	"github.com/pakkasys/fluidquery/sqlite"
	"github.com/pakkasys/fluidquery/views"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	host     string
	port     int
	dbDriver string
	dbPath   string
	dbName   string
	origins  []string
	metrics  bool
}

func (c *cli) serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the encode, decode and URL endpoints and, unless the database
driver is empty, the saved view endpoints. Flags override the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, closeLog, err := c.newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM,
			)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.host, "host", "", "Listen host")
	f.IntVar(&flags.port, "port", 0, "Listen port")
	f.StringVar(&flags.dbDriver, "db-driver", "", `Database driver: "sqlite3", "mysql" or "none"`)
	f.StringVar(&flags.dbPath, "db-path", "", "SQLite database path")
	f.StringVar(&flags.dbName, "db-name", "", "MySQL database name")
	f.StringSliceVar(&flags.origins, "cors-origin", nil, "Allowed CORS origin (repeatable)")
	f.BoolVar(&flags.metrics, "metrics", true, "Serve Prometheus metrics")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Server.Host = f.host
	}
	if changed("port") {
		cfg.Server.Port = f.port
	}
	if changed("db-driver") {
		cfg.Database.Driver = f.dbDriver
		if f.dbDriver == "none" {
			cfg.Database.Driver = ""
		}
	}
	if changed("db-path") {
		cfg.Database.Path = f.dbPath
	}
	if changed("db-name") {
		cfg.Database.Name = f.dbName
	}
	if changed("cors-origin") {
		cfg.CORS.Origins = f.origins
	}
	if changed("metrics") {
		cfg.Server.Metrics = f.metrics
	}
}

// serve runs the server until ctx is done.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	m := metrics.New()

	service, closeDB, err := openViews(ctx, cfg.Database, m)
	if err != nil {
		return err
	}
	defer closeDB()
	if service == nil {
		logger.Info("Saved views disabled")
	}

	return server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Views:   service,
	}).Run(ctx)
}

// openViews connects to the configured database and returns the view
// service. It returns a nil service when no driver is configured.
func openViews(
	ctx context.Context, cfg config.DatabaseConfig, observer views.Observer,
) (*views.Service, func(), error) {
	connectConfig := database.FromConfig(cfg)
	if connectConfig == nil {
		return nil, func() {}, nil
	}

	var dialect database.Dialect
	switch connectConfig.Driver {
	case database.MySQL:
		dialect = mysql.NewDialect()
	case database.SQLite3:
		dialect = sqlite.NewDialect()
	default:
		return nil, nil, fmt.Errorf("unsupported driver: %q", connectConfig.Driver)
	}

	db, err := database.Connect(ctx, connectConfig)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { db.Close() }

	repository := views.NewSQLRepository(db, dialect)
	if err := repository.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}

	return views.NewService(repository, observer), closeDB, nil
}

// loadConfig loads the config file and applies the logging flags.
func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath, c.getenv)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg. The returned function closes
// the log file, if any.
func (c *cli) newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var (
		out     io.Writer
		closeFn = func() {}
	)
	switch cfg.Logging.Output {
	case "", "stderr":
		out = c.stderr
	case "stdout":
		out = c.stdout
	default:
		file, err := os.OpenFile(
			cfg.Logging.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = file
		closeFn = func() { file.Close() }
	}

	logger, err := logging.New(out, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}
