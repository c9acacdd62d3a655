package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"connwatch/config"
	"connwatch/internals/app"
	"connwatch/internals/server"
	"connwatch/pkg/logger"

	"github.com/spf13/cobra"
)

const drainTimeout = 30 * time.Second

type ServeCmd struct {
	flags *GlobalFlags
}

func NewServeCmd(flags *GlobalFlags) *cobra.Command {
	c := &ServeCmd{flags: flags}

	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the monitor and its HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
}

func (c *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(c.flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Done closes on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Init(cfg.Env, cfg.ServiceName)
	log.Info().Msg("logger initialized")

	container, err := app.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	log.Info().Msg("dependencies initialized")

	if err := container.Start(ctx); err != nil {
		_ = container.Shutdown(context.Background())
		return fmt.Errorf("failed to start background workers: %w", err)
	}

	router := app.RegisterRoutes(container)
	srv := server.New(fmt.Sprintf(":%d", cfg.Port), router, log)
	srv.Start()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case runErr = <-srv.Errors():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	// 1. Stop accepting requests
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// 2. Stop the monitor, workers and infra
	if err := container.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("dependencies shutdown failed")
	}

	log.Info().Msg("graceful shutdown complete")
	return runErr
}
