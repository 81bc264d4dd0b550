package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/engine"
	"github.com/roach88/nlsql/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario name glob
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run question scenarios against the pipeline",
		Long: `Run scenario files against the configured datasets and check each
outcome's status, SQL, answer, attempts and row count.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  nlsql test ./scenarios
  nlsql test ./scenarios --filter "count_*"
  nlsql test ./scenarios --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name glob")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
	}

	scenarios, err := harness.LoadDir(scenariosDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenarios", err)
	}
	scenarios = filterScenarios(scenarios, opts.Filter)

	out := newFormatter(opts.RootOptions, cmd)
	result := TestResult{Scenarios: []ScenarioResult{}}

	if len(scenarios) == 0 {
		if out.JSON() {
			return out.Success(result)
		}
		return out.Success("No scenarios found.")
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	// Scenario runs are not recorded in history.
	eng := engine.New(cfg, engine.WithLogger(newLogger(cmd.ErrOrStderr(), opts.Verbose)))

	results, err := harness.RunAll(cmd.Context(), eng, scenarios)
	if err != nil {
		return WrapExitError(ExitCommandError, "run scenarios", err)
	}

	for _, r := range results {
		result.Scenarios = append(result.Scenarios, ScenarioResult{Name: r.Scenario, Pass: r.Pass, Errors: r.Errors})
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}
	result.Total = len(results)

	if out.JSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		outputTestText(out, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

func filterScenarios(scenarios []*harness.Scenario, pattern string) []*harness.Scenario {
	if pattern == "" {
		return scenarios
	}
	var kept []*harness.Scenario
	for _, s := range scenarios {
		if ok, _ := filepath.Match(pattern, s.Name); ok {
			kept = append(kept, s)
		}
	}
	return kept
}

func outputTestText(out *OutputFormatter, result TestResult) {
	w := out.Writer
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
