package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <query.json>",
		Short: "Run a query document against the catalog",
		Long: `Validate and evaluate a JSON query document.

Example:
  campusql query ./high-averages.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "read query document", err)
			}
			var doc map[string]any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return WrapExitError(ExitCommandError, "parse query document", err)
			}

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open storage", err)
			}
			defer closeStore()

			rows, err := svc.PerformQuery(doc)
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "perform query", err)
			}
			if rootOpts.Format == "json" {
				return out.Success(rows)
			}
			for _, row := range rows {
				line, err := json.Marshal(row)
				if err != nil {
					return WrapExitError(ExitCommandError, "encode result row", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			}
			return nil
		},
	}
}
