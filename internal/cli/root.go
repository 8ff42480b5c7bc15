// Package cli implements the command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/config"
	"github.com/aidanlsb/fleetdb/internal/logging"
	"github.com/aidanlsb/fleetdb/internal/store"
	"github.com/aidanlsb/fleetdb/internal/ui"
)

var (
	// Global flags
	configPath   string
	databaseFlag string
	logLevelFlag string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fleetdb",
	Short: "fleetdb - tournament fleet and results database",
	Long: `fleetdb ingests tournament fleet lists and round results into a local
SQLite database and derives fleet, ship, squadron and player summaries.

Seed the component catalog once, then ingest one event bundle at a time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config resolution for commands that don't need it
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Run 'fleetdb config init' to create a default config")
		}
		if databaseFlag != "" {
			cfg.Database = databaseFlag
		}
		if logLevelFlag != "" {
			cfg.LogLevel = logLevelFlag
		}
		ui.ConfigureTheme(cfg.UI.Accent)

		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the CLI. An interrupt cancels the command's context, which
// aborts an ingestion batch between components.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&databaseFlag, "db", "", "Path to the SQLite database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolvePath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = config.Defaults()
	}

	return loadedCfg, resolvedPath, nil
}

// openStore opens the configured database. Caller is responsible for
// calling Close().
func openStore() (*store.Store, error) {
	st, err := store.Open(getConfig().Database)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", getConfig().Database, err)
	}
	return st, nil
}
