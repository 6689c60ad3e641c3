package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/internal/history"
	"github.com/leapstack-labs/sqlkit/internal/runner"
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "sqlkit> "
	replContinuePrompt = "   ...> "
)

// errNoQuery is reported by dot-commands that need a query when none was given.
var errNoQuery = errors.New("no query yet: enter one ending with ; or pass it after the command")

// ReplOptions holds options for the repl command.
type ReplOptions struct {
	BindingOptions
	Connect          bool
	AllowDestructive bool
	Format           string
	HistoryFile      string
}

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	opts := &ReplOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL shell",
		Long: `Start an interactive shell. Statements end with a semicolon and may span
several lines. Each statement is validated and shown formatted, or run
against the configured target when --connect is given.

Dot-commands work on their argument or, without one, on the last statement.`,
		Example: `  # Check and format queries interactively
  sqlkit repl

  # Run queries against the prod environment
  sqlkit repl --connect --target prod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, opts)
		},
	}

	addBindingFlags(cmd, &opts.BindingOptions)
	cmd.Flags().BoolVar(&opts.Connect, "connect", false, "Run statements against the configured target")
	cmd.Flags().BoolVar(&opts.AllowDestructive, "allow-destructive", false, "Run destructive statements")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", output.TableFormatTable, "Result format (table|json|csv|md)")
	cmd.Flags().StringVar(&opts.HistoryFile, "history-file", "", "Line editing history file (default: user cache dir)")

	return cmd
}

func runRepl(cmd *cobra.Command, opts *ReplOptions) error {
	cmdCtx := NewCommandContext(cmd)
	bindings, err := opts.resolve(cmdCtx.Cfg)
	if err != nil {
		return err
	}

	sess := &replSession{
		r:        cmdCtx.Renderer,
		lint:     cmdCtx.Cfg.LintSettings(),
		format:   cmdCtx.Cfg.FormatOptions(),
		bindings: bindings,
		tableFmt: opts.Format,
	}
	if opts.Connect {
		run, closeRunner, err := openRunner(cmd, cmdCtx, opts.AllowDestructive, history.SourceRepl)
		if err != nil {
			return err
		}
		defer closeRunner()
		sess.runner = run
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyPath(opts.HistoryFile),
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	target := "not connected"
	if sess.runner != nil {
		target = cmdCtx.Cfg.Target.Type
	}
	cmdCtx.Renderer.Printf("sqlkit REPL (%s)\n", target)
	cmdCtx.Renderer.Println("Type .help for commands, .quit to exit")
	cmdCtx.Renderer.Println("")

	ctx := cmd.Context()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sess.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		prompt, quit := sess.handleLine(ctx, line)
		if quit {
			return nil
		}
		rl.SetPrompt(prompt)
	}
}

func historyPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "sqlkit")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// replSession holds the state of one REPL.
type replSession struct {
	r        *output.Renderer
	lint     *lint.Config
	format   sqltext.Options
	bindings sqltext.Bindings
	runner   *runner.Runner
	tableFmt string

	buf  strings.Builder
	last string
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// handleLine feeds one input line and returns the next prompt.
func (s *replSession) handleLine(ctx context.Context, line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return s.prompt(), false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		quit, err := s.dotCommand(ctx, line)
		if err != nil {
			s.r.Error(err.Error())
		}
		return replPrompt, quit
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return replContinuePrompt, false
	}

	query := s.buf.String()
	s.buf.Reset()
	s.last = query
	if err := s.eval(ctx, query); err != nil {
		s.r.Error(err.Error())
	}
	s.r.Println("")
	return replPrompt, false
}

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

// eval runs a complete statement, or checks and formats it when not connected.
func (s *replSession) eval(ctx context.Context, query string) error {
	if s.runner != nil {
		return s.run(ctx, query)
	}
	res := sqltext.ValidateWithConfig(query, s.lint)
	if !res.Valid || len(res.Diagnostics) > 0 {
		if err := renderValidation(s.r, "", res); err != nil {
			return err
		}
	}
	if !res.Valid {
		return nil
	}
	return s.r.SQL(sqltext.FormatWithOptions(query, s.format))
}

func (s *replSession) run(ctx context.Context, query string) error {
	if s.runner == nil {
		return fmt.Errorf("%w (start with --connect)", runner.ErrNotConnected)
	}
	res, err := s.runner.Query(ctx, query, s.bindings)
	if err != nil {
		return err
	}
	return renderRunResult(s.r, res, s.tableFmt)
}

func (s *replSession) dotCommand(ctx context.Context, line string) (bool, error) {
	command, arg, _ := strings.Cut(line, " ")
	command = strings.ToLower(command)
	arg = strings.TrimSpace(arg)

	query := func() (string, error) {
		if arg != "" {
			return arg, nil
		}
		if s.last == "" {
			return "", errNoQuery
		}
		return s.last, nil
	}

	switch command {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		printReplHelp(s.r.Writer())
	case ".clear":
		s.r.Printf("\033[H\033[2J")
	case ".set":
		if arg == "" {
			return false, s.printBindings()
		}
		name, value, err := parseVar(arg)
		if err != nil {
			return false, err
		}
		s.bindings[name] = value
	case ".unset":
		delete(s.bindings, arg)
	case ".format", ".minify", ".tables", ".type", ".vars", ".validate", ".run":
		q, err := query()
		if err != nil {
			return false, err
		}
		return false, s.apply(ctx, command, q)
	default:
		return false, fmt.Errorf("unknown command: %s (type .help for commands)", command)
	}
	return false, nil
}

func (s *replSession) apply(ctx context.Context, command, q string) error {
	switch command {
	case ".format":
		return s.r.SQL(sqltext.FormatWithOptions(q, s.format))
	case ".minify":
		return s.r.SQL(sqltext.Minify(q))
	case ".tables":
		return renderTables(s.r, sqltext.ExtractTableNames(q))
	case ".type":
		return renderType(s.r, sqltext.GetQueryType(q))
	case ".vars":
		return renderVars(s.r, q, s.bindings)
	case ".validate":
		return renderValidation(s.r, "", sqltext.ValidateWithConfig(q, s.lint))
	default:
		return s.run(ctx, q)
	}
}

func (s *replSession) printBindings() error {
	if len(s.bindings) == 0 {
		s.r.Println("No bindings")
		return nil
	}
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.r.Printf("%s = %s\n", name, sqltext.Literal(s.bindings[name]))
	}
	return nil
}

var replCommands = []string{
	".help", ".format", ".minify", ".tables", ".type", ".vars",
	".validate", ".run", ".set", ".unset", ".clear", ".quit", ".exit",
}

func newReplCompleter() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(replCommands))
	for _, c := range replCommands {
		items = append(items, readline.PcItem(c))
	}
	return readline.NewPrefixCompleter(items...)
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .format [SQL]     Pretty-print a query
  .minify [SQL]     Collapse a query to one line
  .tables [SQL]     List referenced tables
  .type [SQL]       Classify a query
  .vars [SQL]       List variables and their bindings
  .validate [SQL]   Check a query
  .run [SQL]        Run a query (needs --connect)
  .set [name=value] Bind a variable, or list bindings
  .unset <name>     Remove a binding
  .clear            Clear the screen
  .quit / .exit     Exit the REPL

Without an argument a command uses the last statement.
Statements must end with a semicolon (;).
`
	_, _ = fmt.Fprintln(w, help)
}
