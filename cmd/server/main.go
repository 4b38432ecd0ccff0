/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave ledger server, and exposes the monthly
  Recalculate & Save as a one-shot command for HR operators.

COMMANDS:
  serve          Run the HTTP API (graceful shutdown on SIGINT/SIGTERM)
  recalc         Recalculate & Save one month, print the report
  preview        Print the computed rows for one month without saving
  import-policy  Replace settings and quotas from a JSON policy document

GLOBAL FLAGS:
  --config  YAML config file (optional, defaults apply without it)
  --db      SQLite database path, overrides config
            Use ":memory:" for in-memory database

STARTUP SEQUENCE:
  1. Load config (file, then LEDGER_* environment overrides)
  2. Build zap logger
  3. Open SQLite store
  4. Seed ledger settings and quotas on first start
  5. Run the command

EXAMPLES:
  # Run the API with a config file
  ./server serve --config=./ledger.yaml

  # Demo data on an in-memory database
  ./server serve --db=":memory:" --scenario=cross-month

  # Save May with a new accrual
  ./server recalc --period=2025-05 --accrual=1.75

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Config file format
  - timeoff/service.go: Recalculate & Save
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/api"
	"github.com/warp/leave-ledger/config"
	"github.com/warp/leave-ledger/logging"
	"github.com/warp/leave-ledger/store/sqlite"
)

// App holds the application dependencies
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *sqlite.Store
	handler *api.Handler
}

var (
	configPath string
	dbPath     string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Leave ledger - monthly carry-forward balances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(recalcCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(importPolicyCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if app != nil && app.logger != nil {
			app.logger.Error("command failed", zap.Error(err))
			closeApp()
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// initApp sets up config, logger, store and handler
func initApp(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app = &App{cfg: cfg, logger: logger}

	logger.Debug("configuration loaded", zap.String("db", cfg.Database.Path))

	app.store, err = sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app.handler = api.NewHandler(app.store, logger)

	quotas, err := cfg.QuotaCatalog()
	if err != nil {
		return fmt.Errorf("invalid quotas in config: %w", err)
	}
	if err := app.handler.Service.Bootstrap(ctx, cfg.LedgerConfig(), quotas); err != nil {
		return fmt.Errorf("failed to seed ledger settings: %w", err)
	}
	return nil
}

func closeApp() {
	if app == nil {
		return
	}
	if app.store != nil {
		app.store.Close()
		app.store = nil
	}
	if app.logger != nil {
		app.logger.Sync()
	}
}
