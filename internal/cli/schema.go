package cli

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/engine"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe a dataset's tables and columns",
		Example: `  nlsql schema
  nlsql schema --dataset university --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, dataset, cmd)
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "chinook", "dataset to describe")

	return cmd
}

func runSchema(opts *RootOptions, dataset string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	out := newFormatter(opts, cmd)
	eng := engine.New(cfg, engine.WithLogger(newLogger(cmd.ErrOrStderr(), opts.Verbose)))

	schema, err := eng.Schema(cmd.Context(), dataset)
	if err != nil {
		_ = out.Error(errorCode(err), err.Error(), nil)
		return commandError(err)
	}

	if out.JSON() {
		return out.Success(schema)
	}

	tables := make([]string, 0, len(schema))
	for t := range schema {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	var rows [][]string
	for _, t := range tables {
		for _, c := range schema[t] {
			def := ""
			if c.Default != nil {
				def = *c.Default
			}
			rows = append(rows, []string{
				t,
				c.Name,
				c.Type,
				strconv.FormatBool(c.Nullable),
				def,
				strconv.FormatBool(c.PrimaryKey),
			})
		}
	}
	out.Table([]string{"Table", "Column", "Type", "Nullable", "Default", "PK"}, rows)
	return nil
}
