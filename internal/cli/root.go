// Package cli implements the campusql command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"campusql/internal/catalog"
	"campusql/internal/config"
	"campusql/internal/ingest"
	"campusql/internal/service"
	"campusql/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the campusql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "campusql",
		Short: "Catalog and query engine for campus datasets",
		Long:  "campusql ingests course section and campus room archives and answers structured queries against them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			logLevel := slog.LevelInfo
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openService builds the service stack from configuration. The returned
// closer releases the storage backend.
func openService(opts *RootOptions) (*service.Service, func() error, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	var st store.Store
	switch cfg.Storage {
	case config.StorageSQLite:
		if err = os.MkdirAll(cfg.DataDir, 0o755); err == nil {
			st, err = store.OpenSQLite(filepath.Join(cfg.DataDir, "campusql.db"))
		}
	default:
		st, err = store.OpenDisk(cfg.DataDir)
	}
	if err != nil {
		return nil, nil, err
	}

	svc := service.New(catalog.Open(st), ingest.NewHTTPGeocoder(cfg.GeocoderURL))
	return svc, st.Close, nil
}
