// Package config provides configuration management for the sqlkit CLI.
//
// Configuration is layered with koanf: built-in defaults, then a
// sqlkit.yaml file, then SQLKIT_ environment variables, then explicitly
// set command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	OutputFormat string               `koanf:"output"`
	Verbose      bool                 `koanf:"verbose"`
	Format       FormatConfig         `koanf:"format"`
	Lint         LintConfig           `koanf:"lint"`
	Target       *TargetConfig        `koanf:"target"`
	Environments map[string]EnvConfig `koanf:"environments"`
	Vars         map[string]any       `koanf:"vars"`
	Serve        ServeConfig          `koanf:"serve"`
	History      HistoryConfig        `koanf:"history"`
}

// FormatConfig holds formatter defaults.
type FormatConfig struct {
	KeywordCase string `koanf:"keyword_case"`
	Indent      string `koanf:"indent"`
	Semicolon   bool   `koanf:"semicolon"`
}

// LintConfig holds validation rule settings.
type LintConfig struct {
	Disabled []string                  `koanf:"disabled"`
	Severity map[string]string         `koanf:"severity"`
	Rules    map[string]map[string]any `koanf:"rules"`
}

// TargetConfig describes the database queries are run against.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Database string            `koanf:"database"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Options  map[string]string `koanf:"options"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
}

// ServeConfig holds HTTP API settings.
type ServeConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HistoryConfig controls the record of executed queries.
type HistoryConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"`
	MaxEntries int    `koanf:"max_entries"`
}

// Default configuration values.
const (
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultKeywordCase     = "upper"
	DefaultIndent          = "  "
	DefaultTargetType      = "sqlite"
	DefaultDatabase        = ":memory:"
	DefaultServeAddr       = "127.0.0.1:8642"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultHistoryFile     = ".sqlkit/history.db"
	DefaultHistoryEntries  = 1000
)

// Default returns the configuration used when nothing else is loaded.
func Default() *Config {
	return &Config{
		OutputFormat: DefaultOutput,
		Format: FormatConfig{
			KeywordCase: DefaultKeywordCase,
			Indent:      DefaultIndent,
		},
		Target: &TargetConfig{
			Type:     DefaultTargetType,
			Database: DefaultDatabase,
		},
		Serve: ServeConfig{
			Addr:            DefaultServeAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		History: HistoryConfig{
			Enabled:    true,
			Path:       DefaultHistoryFile,
			MaxEntries: DefaultHistoryEntries,
		},
	}
}
