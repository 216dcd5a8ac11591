package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"campusql/internal/config"
	"campusql/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST façade",
		Long: `Start the REST façade over the dataset catalog.

Routes:
  PUT    /dataset/{id}/{kind}   ingest a zip archive body
  DELETE /dataset/{id}          remove a dataset
  POST   /query                 evaluate a query document
  GET    /datasets              list known datasets

Example:
  campusql serve --config ./campusql.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open storage", err)
			}
			defer closeStore()

			srv := server.New(cfg.ListenAddr, svc)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				slog.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.ListenAndServe(); err != nil {
				return WrapExitError(ExitCommandError, "serve", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "bind address (overrides config)")
	return cmd
}
