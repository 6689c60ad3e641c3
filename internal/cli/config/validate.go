package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
)

// TargetTypes lists the supported database target types.
var TargetTypes = []string{"sqlite", "postgres", "duckdb"}

var outputModes = []string{"auto", "text", "markdown", "md", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(outputModes, strings.ToLower(c.OutputFormat)) && c.OutputFormat != "" {
		return fmt.Errorf("invalid output %q: want one of %s", c.OutputFormat, strings.Join(outputModes, ", "))
	}
	if _, err := sqltext.ParseKeywordCase(c.Format.KeywordCase); err != nil {
		return fmt.Errorf("invalid format.keyword_case: %w", err)
	}
	for id, sev := range c.Lint.Severity {
		if _, ok := lint.ParseSeverity(sev); !ok {
			return fmt.Errorf("invalid lint.severity for %s: %q", id, sev)
		}
	}
	if c.Target != nil {
		if err := c.Target.Validate(); err != nil {
			return fmt.Errorf("invalid target configuration: %w", err)
		}
	}
	return nil
}

// Validate checks the target type.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !slices.Contains(TargetTypes, strings.ToLower(t.Type)) {
		return fmt.Errorf("unknown target type %q (available: %s)\nHint: set target.type in sqlkit.yaml",
			t.Type, strings.Join(TargetTypes, ", "))
	}
	return nil
}

// LintSettings converts the lint section into an analyzer configuration.
func (c *Config) LintSettings() *lint.Config {
	cfg := lint.NewConfig()
	for _, id := range c.Lint.Disabled {
		if id = strings.TrimSpace(id); id != "" {
			cfg.Disable(id)
		}
	}
	for id, sev := range c.Lint.Severity {
		if s, ok := lint.ParseSeverity(sev); ok {
			cfg.SetSeverity(id, s)
		}
	}
	for id, opts := range c.Lint.Rules {
		cfg.SetRuleOptions(id, opts)
	}
	return cfg
}

// FormatOptions converts the format section into formatter options.
func (c *Config) FormatOptions() sqltext.Options {
	kc, err := sqltext.ParseKeywordCase(c.Format.KeywordCase)
	if err != nil {
		kc = sqltext.KeywordUpper
	}
	return sqltext.Options{
		KeywordCase:     kc,
		Indent:          c.Format.Indent,
		EnsureSemicolon: c.Format.Semicolon,
	}
}
