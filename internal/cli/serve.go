package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Endpoints:
  POST /ask                 {"question": "...", "dataset": "chinook"}
  GET  /schema?dataset=     tables and columns
  GET  /history[?dataset=]  recent answers
  GET  /metrics             pipeline counters as JSON
  GET  /metrics/prometheus  Prometheus exposition`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, listen, cmd)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default: listen from config)")

	return cmd
}

func runServe(opts *RootOptions, listen string, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if listen == "" {
		listen = a.cfg.Listen
	}

	srv, err := server.New(a.engine, a.history, server.Options{
		HistorySize: a.cfg.HistorySize,
		Logger:      a.log,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "build server", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, listen); err != nil {
		return WrapExitError(ExitFailure, "serve", err)
	}
	return nil
}
