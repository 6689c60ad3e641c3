package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new sqlkit project",
		Long: `Initialize a new sqlkit project with a configuration file and a queries
directory.

This creates:
  - sqlkit.yaml with format, lint, target, vars and history settings
  - queries/ directory for .sql files
  - .gitignore excluding the local history and database files

Use --example to create a working demo with a schema, seed data and report
queries that use variables.`,
		Example: `  # Initialize in current directory
  sqlkit init

  # Initialize with a full working example
  sqlkit init --example

  # Initialize in a new directory
  sqlkit init my-project --example

  # Force overwrite existing config
  sqlkit init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContext(cmd).Renderer
			name := templateMinimal
			if example {
				name = templateExample
			}
			return runInit(r, dir, name, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create an example project with a schema and report queries")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, "sqlkit.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("sqlkit.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, err := listTemplateFiles(template)
	if err != nil {
		return err
	}
	groups := groupTemplateFiles(files)
	styles := r.Styles()

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"directory": dir, "files": files})
	}

	for _, group := range []string{"config", "queries"} {
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatHeader(2, output.Title(group)))
		} else {
			r.Println(styles.Header2.Render(output.Title(group)))
		}
		for _, f := range groups[group] {
			r.Printf("  %s %s\n", statusIcon(styles, statusPass), f)
		}
		r.Println("")
	}

	r.Success("sqlkit project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if template == templateExample {
		r.Println("  sqlkit run -i queries/schema.sql --allow-destructive   Create and seed the tables")
		r.Println("  sqlkit run -i queries/reports/active_customers.sql     Run a report")
		r.Println("  sqlkit doctor                                          Check every query")
		return nil
	}
	r.Println("  1. Point target in sqlkit.yaml at your database")
	r.Println("  2. Add .sql files to queries/")
	r.Println("  3. Run 'sqlkit validate --watch queries' while editing")
	r.Println("  4. Run 'sqlkit run -i queries/example.sql --var one=1'")
	return nil
}
