package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/config"
	"github.com/roach88/nlsql/internal/engine"
	"github.com/roach88/nlsql/internal/planner"
	"github.com/roach88/nlsql/internal/store"
)

// APIKeyEnv names the environment variable holding the planner's API key.
const APIKeyEnv = "ANTHROPIC_API_KEY"

// app is the wiring shared by commands that run the pipeline.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	out     *OutputFormatter
	engine  *engine.Engine
	history *store.Store
	planner *planner.CachingPlanner
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	return cfg, nil
}

// newApp loads config, opens the history store, and builds the engine.
// withPlanner enables the LLM planner when the config asks for it.
func newApp(opts *RootOptions, cmd *cobra.Command, withPlanner bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		log: newLogger(cmd.ErrOrStderr(), opts.Verbose),
		out: newFormatter(opts, cmd),
	}

	a.history, err = store.Open(cfg.HistoryDB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open history", err)
	}

	engineOpts := []engine.Option{
		engine.WithLogger(a.log),
		engine.WithHistory(a.history),
	}

	if withPlanner && cfg.Planner.Enabled {
		p, err := a.newPlanner()
		if err != nil {
			a.Close()
			return nil, err
		}
		if p != nil {
			a.planner = p
			engineOpts = append(engineOpts, engine.WithPlanner(p))
		}
	}

	a.engine = engine.New(cfg, engineOpts...)
	return a, nil
}

// newPlanner returns nil when no API key is set; the pipeline then runs on
// the fallback plan.
func (a *app) newPlanner() (*planner.CachingPlanner, error) {
	apiKey := os.Getenv(APIKeyEnv)
	if apiKey == "" {
		a.log.Warn("planner enabled but API key not set, using fallback plan", "env", APIKeyEnv)
		return nil, nil
	}

	ttl, err := a.cfg.Planner.TTL()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid planner cache_ttl", err)
	}

	client := planner.NewAnthropicClient(a.cfg.Planner.Model, a.cfg.Planner.MaxTokens, apiKey, a.log)
	return planner.NewCachingPlanner(planner.NewLLMPlanner(client, a.log), ttl), nil
}

func (a *app) Close() {
	if a.planner != nil {
		a.planner.Close()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warn("close history", "error", err)
		}
	}
}

// commandError maps a pipeline error to an exit code.
func commandError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if engine.IsConfigurationError(err) {
		return WrapExitError(ExitCommandError, "invalid request", err)
	}
	return WrapExitError(ExitFailure, "query failed", err)
}

// errorCode is the CLIError code for err.
func errorCode(err error) string {
	var e *engine.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return "USAGE"
}
