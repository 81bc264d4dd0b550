package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/interpret"
)

// AskOptions holds flags for the ask command.
type AskOptions struct {
	*RootOptions
	Dataset string
}

// NewAskCommand creates the ask command.
func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question against a dataset",
		Long: `Answer a natural-language question against a configured dataset.

Exit codes:
  0 - Answered, or the question is not supported
  1 - The query failed
  2 - Command error (unknown dataset, bad config)

Examples:
  nlsql ask "How many tracks are there?"
  nlsql ask --dataset university "Which courses have the most students?"
  nlsql ask --format json "What tables are in this database?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "chinook", "dataset to query")

	return cmd
}

func runAsk(opts *AskOptions, question string, cmd *cobra.Command) error {
	a, err := newApp(opts.RootOptions, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.engine.Ask(cmd.Context(), question, opts.Dataset)
	if err != nil {
		var details any
		if out != nil {
			details = out.Trace
		}
		_ = a.out.Error(errorCode(err), err.Error(), details)
		return commandError(err)
	}

	if a.out.JSON() {
		return a.out.SuccessWithTrace(out, out.Trace.TraceID)
	}

	w := a.out.Writer
	fmt.Fprintln(w, out.Answer)
	if out.Trace.SQL != "" {
		fmt.Fprintf(w, "\nSQL: %s\n", out.Trace.SQL)
	}
	if len(out.Columns) > 0 && len(out.Rows) > 0 {
		fmt.Fprintln(w)
		a.out.Table(out.Columns, rowStrings(out.Rows))
	}

	if a.out.Verbose {
		trace, err := json.MarshalIndent(out.Trace, "", "  ")
		if err == nil {
			a.out.VerboseLog("trace:\n%s", trace)
		}
	}
	return nil
}

func rowStrings(rows [][]any) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = interpret.FormatValue(v)
		}
		out[i] = cells
	}
	return out
}
