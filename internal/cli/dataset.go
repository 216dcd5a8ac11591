package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <sections|rooms> <archive.zip>",
		Short: "Ingest an archive as a new dataset",
		Long: `Ingest a zip archive as a new dataset.

Sections archives must carry a top-level courses/ directory of course
files; rooms archives must carry an index.htm building index.

Example:
  campusql add ubc sections ./courses.zip
  campusql add campus rooms ./rooms.zip --verbose`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			raw, err := os.ReadFile(args[2])
			if err != nil {
				return WrapExitError(ExitCommandError, "read archive", err)
			}
			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open storage", err)
			}
			defer closeStore()

			ids, err := svc.AddDataset(cmd.Context(), args[0], args[1], base64.StdEncoding.EncodeToString(raw))
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "add dataset", err)
			}
			return out.Success(ids)
		},
	}
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a dataset from memory and durable storage",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open storage", err)
			}
			defer closeStore()

			id, err := svc.RemoveDataset(args[0])
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "remove dataset", err)
			}
			return out.Success(id)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all known datasets",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open storage", err)
			}
			defer closeStore()

			infos, err := svc.ListDatasets()
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "list datasets", err)
			}
			if rootOpts.Format == "json" {
				return out.Success(infos)
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d rows\n", info.ID, info.Kind, info.RowCount)
			}
			return nil
		},
	}
}
