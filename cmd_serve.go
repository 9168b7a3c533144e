package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Chative-core-poc-v1/frontdesk/internal/api"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

func newServeCommand(envFile *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logx.Init(logx.LoggerOpts{Environment: cfg.Environment})
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides API_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg *AppConfig) error {
	app, err := buildApp(ctx, cfg)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to start")
		return err
	}
	defer app.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.NewServer(app.Engine).Run(gctx, cfg.Server.Addr)
	})
	if app.MemorySessions != nil {
		g.Go(func() error {
			return app.MemorySessions.Run(gctx, sweepInterval(cfg))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logx.Error().Err(err).Msg("frontdesk stopped with error")
		return err
	}
	logx.Info().Msg("frontdesk stopped")
	return nil
}
