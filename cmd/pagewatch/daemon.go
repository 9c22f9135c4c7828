package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/statusapi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newDaemonCommand() *cobra.Command {
	var noReload bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Monitor targets continuously",
		Long: `Check due targets on every poll tick until interrupted. SIGINT or SIGTERM stops
the loop between targets; checks already running are allowed to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !noReload {
				cm, err := config.NewConfigManager(a.configPath, config.ConfigManagerOptions{
					Logger:           a.logger,
					HotReloadEnabled: true,
					ReloadDelay:      config.DefaultConfigManagerOptions().ReloadDelay,
				})
				if err != nil {
					a.logger.Warn().Err(err).Msg("Config hot reload unavailable")
				} else {
					defer cm.Close()
					cm.OnReload(a.applyConfig)
					cm.StartHotReload(ctx)
				}
			}

			return runDaemon(ctx, a)
		},
	}

	cmd.Flags().BoolVar(&noReload, "no-reload", false, "do not watch the config file for changes")
	return cmd
}

// runDaemon runs the monitor loop and, when enabled, the status API until ctx is done.
func runDaemon(ctx context.Context, a *app) error {
	cfg := a.config()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.service.Run(gctx)
	})

	if cfg.StatusServerConfig.Enabled {
		server := statusapi.NewServer(
			cfg.StatusServerConfig.ListenAddr,
			a.service.Scheduler(),
			a.history(),
			a.service,
			a.logger,
		)
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	a.logger.Info().
		Int("targets", len(cfg.Targets)).
		Dur("poll_interval", cfg.MonitorConfig.PollInterval()).
		Bool("status_api", cfg.StatusServerConfig.Enabled).
		Msg("Daemon started")

	err := g.Wait()
	a.logger.Info().Msg("Daemon stopped")
	return err
}
