package commands

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlkit/internal/cli/config"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// BindingOptions collects variable values from flags.
type BindingOptions struct {
	Vars     []string
	VarsFile string
}

func addBindingFlags(cmd *cobra.Command, opts *BindingOptions) {
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "Variable binding name=value (repeatable)")
	cmd.Flags().StringVar(&opts.VarsFile, "vars-file", "", "YAML file of variable bindings")
}

// resolve merges config vars, the vars file and --var flags, in increasing
// precedence.
func (o *BindingOptions) resolve(cfg *config.Config) (sqltext.Bindings, error) {
	b := sqltext.Bindings{}
	if cfg != nil {
		maps.Copy(b, cfg.Vars)
	}

	if o.VarsFile != "" {
		fileVars, err := loadVarsFile(o.VarsFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(b, fileVars)
	}

	for _, kv := range o.Vars {
		name, value, err := parseVar(kv)
		if err != nil {
			return nil, err
		}
		b[name] = value
	}
	return b, nil
}

func loadVarsFile(path string) (sqltext.Bindings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file: %w", err)
	}
	var vars map[string]any
	if err := yaml.Unmarshal(content, &vars); err != nil {
		return nil, fmt.Errorf("failed to parse vars file %s: %w", path, err)
	}
	return sqltext.Bindings(vars), nil
}

// parseVar splits name=value. The value is read as a YAML scalar, so 42 is a
// number, true a boolean and null NULL; quote it ('42') to force a string.
func parseVar(kv string) (string, any, error) {
	name, raw, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid --var %q: want name=value", kv)
	}

	if strings.TrimSpace(raw) == "" {
		return name, raw, nil
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return name, raw, nil
	}
	switch value.(type) {
	case map[string]any, []any, time.Time:
		// Collections have no literal form and dates stay as written.
		return name, raw, nil
	}
	return name, value, nil
}
