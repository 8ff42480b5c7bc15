// Package config handles global fleetdb configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global fleetdb configuration.
type Config struct {
	// Database is the path to the SQLite database file.
	Database string `toml:"database"`

	// ArchiveDir receives drafts that could not be ingested, one file per
	// event and player.
	ArchiveDir string `toml:"archive_dir"`

	// ExportDir is where `fleetdb export` writes summary tables.
	ExportDir string `toml:"export_dir"`

	// ExportFormat is "csv" or "parquet".
	ExportFormat string `toml:"export_format"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFormat is "console" or "json".
	LogFormat string `toml:"log_format"`

	// CorrectionTimeout bounds how long a single operator prompt may wait.
	// Zero waits indefinitely.
	CorrectionTimeout Duration `toml:"correction_timeout"`

	// MaxCorrections is how many times the operator may re-enter a name for
	// one component before the fleet is given up.
	MaxCorrections int `toml:"max_corrections"`

	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or hex color ("#RRGGBB").
	Accent string `toml:"accent"`
}

// Duration is a time.Duration that decodes from strings like "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		Database:       filepath.Join("data", "fleetdb.db"),
		ArchiveDir:     filepath.Join("data", "raw"),
		ExportDir:      filepath.Join("data", "export"),
		ExportFormat:   "csv",
		LogLevel:       "info",
		LogFormat:      "console",
		MaxCorrections: 3,
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := Defaults()
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.ArchiveDir == "" {
		c.ArchiveDir = def.ArchiveDir
	}
	if c.ExportDir == "" {
		c.ExportDir = def.ExportDir
	}
	if c.ExportFormat == "" {
		c.ExportFormat = def.ExportFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.MaxCorrections <= 0 {
		c.MaxCorrections = def.MaxCorrections
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.ExportFormat {
	case "csv", "parquet":
	default:
		return fmt.Errorf("export_format must be csv or parquet, got %q", c.ExportFormat)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.CorrectionTimeout.Duration < 0 {
		return fmt.Errorf("correction_timeout must not be negative")
	}
	return nil
}

// Load loads the configuration from the default location.
// Returns the defaults if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Defaults(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/fleetdb/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "fleetdb", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "fleetdb", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// ResolvePath returns the explicit path when given, otherwise DefaultPath.
func ResolvePath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultPath()
}

const defaultConfig = `# fleetdb configuration

# SQLite database holding the catalog, events, fleets and scores.
database = "data/fleetdb.db"

# Drafts that fail validation or resolution are archived here as
# <archive_dir>/<event>/<player>.json for manual inspection.
archive_dir = "data/raw"

# Summary exports (fleet_summary, ship_summary, squadron_summary).
export_dir = "data/export"
export_format = "csv"   # csv | parquet

log_level = "info"      # debug | info | warn | error
log_format = "console"  # console | json

# How long a correction prompt waits for the operator ("0s" waits forever),
# and how many corrections are accepted per component.
# correction_timeout = "5m"
max_corrections = 3

# [ui]
# accent = "39"
`

// CreateDefault writes a commented default config to path if none exists.
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
