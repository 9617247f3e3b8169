package app

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agbru/lcscalc/internal/logging"
	"github.com/agbru/lcscalc/internal/server"
)

func (a *Application) newServeCommand() *cobra.Command {
	var cacheMiB int64
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve LCS computations over HTTP",
		Long: `serve exposes the solvers as a JSON API:

  POST /v1/lcs          {"a": "...", "b": "...", "strategy": "wavefront"}
  GET  /v1/strategies
  GET  /healthz
  GET  /metrics         Prometheus text format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.DefaultConfig()
			cfg.Listen = a.Config.Listen
			cfg.Timeout = a.Config.Timeout
			cfg.Workers = a.Config.Workers
			cfg.Processes = a.Config.Processes
			cfg.CacheBytes = cacheMiB << 20

			srv, err := server.NewServer(a.Factory, cfg, logging.NewZerologAdapter(a.logger))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}
	cmd.Flags().Int64Var(&cacheMiB, "cache-mib", server.DefaultConfig().CacheBytes>>20, "result cache size in MiB (0 disables it)")
	return cmd
}
