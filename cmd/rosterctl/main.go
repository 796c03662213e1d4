package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/cmd/rosterctl/commands"
	"github.com/faena-transit/rosterizer/internal/config"
	"github.com/faena-transit/rosterizer/pkg/rosterlog"
	"github.com/faena-transit/rosterizer/pkg/store"
)

var (
	env        string
	configPath string
	app        *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "Rosterizer CLI - cyclical driver rosters for mining-faena bus services",
		Long:  `A CLI tool for building, refining, replicating, and persisting monthly driver rosters under Chilean NxN work/rest cycles.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
			if app != nil && app.Store != nil {
				app.Store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the run configuration (default: rosterizer_config.yaml in cwd or home)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.RunCmd(appRef()))
	rootCmd.AddCommand(commands.ExpandCmd(appRef()))
	rootCmd.AddCommand(commands.ReplicateCmd(appRef()))
	rootCmd.AddCommand(commands.MigrateCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared AppContext pointer; initApp fills it in before
// any RunE fires.
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, and (when configured) the database.
func initApp() error {
	a := appRef()
	a.Ctx = context.Background()

	logger, err := rosterlog.New(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.Logger = logger

	a.Logger.Info("Starting application", zap.String("environment", env))

	a.Logger.Info("Loading configuration")
	if configPath != "" {
		a.Cfg, err = config.LoadFromPath(configPath)
	} else {
		a.Cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.Logger.Debug("Configuration loaded successfully",
		zap.Int("year", a.Cfg.Year),
		zap.Int("month", a.Cfg.Month),
		zap.Int("services", len(a.Cfg.Services)))

	if a.Cfg.DatabaseURL != "" {
		a.Logger.Info("Connecting to database")
		a.Store, err = store.New(a.Ctx, a.Cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.Logger.Debug("Database connection established")
	}

	return nil
}
