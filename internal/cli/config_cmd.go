package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fleetdb/internal/config"
)

type configContext struct {
	cfg          *config.Config
	configPath   string
	configExists bool
}

func loadConfigContextAllowMissing() (*configContext, error) {
	path := config.ResolvePath(configPath)
	ctx := &configContext{cfg: config.Defaults(), configPath: path}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ctx, nil
		}
		return nil, err
	}
	loaded, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	ctx.cfg = loaded
	ctx.configExists = true
	return ctx, nil
}

func configData(ctx *configContext) map[string]interface{} {
	return map[string]interface{}{
		"config_path":        ctx.configPath,
		"exists":             ctx.configExists,
		"database":           ctx.cfg.Database,
		"archive_dir":        ctx.cfg.ArchiveDir,
		"export_dir":         ctx.cfg.ExportDir,
		"export_format":      ctx.cfg.ExportFormat,
		"log_level":          ctx.cfg.LogLevel,
		"log_format":         ctx.cfg.LogFormat,
		"correction_timeout": ctx.cfg.CorrectionTimeout.String(),
		"max_corrections":    ctx.cfg.MaxCorrections,
		"ui": map[string]interface{}{
			"accent": ctx.cfg.UI.Accent,
		},
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	ctx, err := loadConfigContextAllowMissing()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	if isJSONOutput() {
		outputSuccess(configData(ctx), nil)
		return nil
	}

	if ctx.configExists {
		fmt.Printf("config: %s\n", ctx.configPath)
	} else {
		fmt.Printf("config: %s (not created; showing defaults)\n", ctx.configPath)
	}
	fmt.Printf("database: %s\n", ctx.cfg.Database)
	fmt.Printf("archive_dir: %s\n", ctx.cfg.ArchiveDir)
	fmt.Printf("export_dir: %s\n", ctx.cfg.ExportDir)
	fmt.Printf("export_format: %s\n", ctx.cfg.ExportFormat)
	fmt.Printf("log_level: %s\n", ctx.cfg.LogLevel)
	fmt.Printf("log_format: %s\n", ctx.cfg.LogFormat)
	if d := ctx.cfg.CorrectionTimeout.Duration; d > 0 {
		fmt.Printf("correction_timeout: %s\n", d)
	}
	fmt.Printf("max_corrections: %d\n", ctx.cfg.MaxCorrections)
	if ctx.cfg.UI.Accent != "" {
		fmt.Printf("ui.accent: %s\n", ctx.cfg.UI.Accent)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fleetdb config.toml settings",
	Long: `Manage fleetdb config.toml settings.

Without a subcommand, prints the effective configuration.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath := config.ResolvePath(configPath)
		_, statErr := os.Stat(targetPath)
		existed := statErr == nil
		if statErr != nil && !os.IsNotExist(statErr) {
			return handleError(ErrConfigInvalid, statErr, "")
		}

		createdPath, err := config.CreateDefault(targetPath)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": createdPath,
				"created":     !existed,
			}, nil)
			return nil
		}

		if existed {
			fmt.Printf("Config already exists: %s\n", createdPath)
		} else {
			fmt.Printf("Created config: %s\n", createdPath)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
