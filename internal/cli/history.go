package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Dataset string
	Limit   int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently answered questions",
		Example: `  nlsql history
  nlsql history --dataset chinook --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "only show this dataset")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "entries to show (default: history_size from config)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	out := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return WrapExitError(ExitCommandError, "open history", err)
	}
	defer st.Close()

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.HistorySize
	}

	var entries []store.Entry
	if opts.Dataset != "" {
		entries, err = st.RecentForDataset(cmd.Context(), opts.Dataset, limit)
	} else {
		entries, err = st.Recent(cmd.Context(), limit)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "read history", err)
	}

	if out.JSON() {
		return out.Success(entries)
	}

	if len(entries) == 0 {
		return out.Success("No history.")
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.FormatInt(e.Seq, 10),
			formatRFC3339Millis(e.CreatedAt),
			e.Dataset,
			e.Question,
			e.Answer,
		}
	}
	out.Table([]string{"#", "Time", "Dataset", "Question", "Answer"}, rows)
	return nil
}
