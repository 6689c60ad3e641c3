package commands

import (
	"github.com/leapstack-labs/sqlkit/internal/server"
	"github.com/leapstack-labs/sqlkit/internal/watch"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string
	Watch []string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the SQL tools as a JSON HTTP API",
		Long: `Start an HTTP server exposing every SQL tool under /v1:

  POST /v1/format     POST /v1/minify     POST /v1/compact
  POST /v1/tables     POST /v1/validate   POST /v1/type
  POST /v1/variables  POST /v1/render     GET  /v1/events

Requests are JSON bodies of the form {"sql": "...", "bindings": {...}}.
With --watch, .sql files under the given paths are re-validated on change
and the results streamed as server-sent events on /v1/events.

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve on the configured address
  sqlkit serve

  # Serve on all interfaces and stream validation of ./queries
  sqlkit serve --addr :8080 --watch ./queries

  curl -s localhost:8642/v1/format -d '{"sql": "select * from t where a=1"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from serve.addr)")
	cmd.Flags().StringSliceVar(&opts.Watch, "watch", nil, "Files or directories of .sql files to watch")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	lintCfg := cfg.LintSettings()

	addr := cfg.Serve.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	var w *watch.Watcher
	if len(opts.Watch) > 0 {
		var err error
		w, err = watch.New(watch.Config{Paths: opts.Watch, Lint: lintCfg, Logger: cmdCtx.Logger})
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
	}

	srv := server.New(server.Config{
		Addr:            addr,
		ShutdownTimeout: cfg.Serve.ShutdownTimeout,
		Logger:          cmdCtx.Logger,
		Lint:            lintCfg,
		Format:          cfg.FormatOptions(),
		Watcher:         w,
	})

	return srv.Serve(cmd.Context())
}
