// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/sportsdvr/internal/api"
	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/daemon"
	"github.com/ManuGH/sportsdvr/internal/health"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/telemetry"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the scheduler and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sigCtx, stop := daemon.WaitForShutdown()
			defer stop()
			return runDaemon(sigCtx, ctx)
		},
	}
}

func runDaemon(ctx context.Context, cc *commandContext) error {
	cfg := cc.cfg
	logger := log.WithComponent("daemon")
	logger.Info().
		Str("event", "config.loaded").
		Str("path", cc.loader.Path()).
		Str("version", cfg.Version).
		Msg("starting sportsdvr")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return fmt.Errorf("startup checks: %w", err)
	}

	rt, err := daemon.Build(ctx, cfg)
	if err != nil {
		return err
	}

	server := api.New(api.Options{
		Scanner:     rt.Engine,
		Health:      rt.Health,
		RateLimit:   cfg.API.RateLimit,
		ServiceName: telemetry.ServiceName,
	})
	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(cfg.API.Listen), daemon.Deps{
		Logger:     logger,
		APIHandler: server.Handler(),
	})
	if err != nil {
		_ = rt.Close(context.WithoutCancel(ctx))
		return err
	}

	holder := config.NewHolder(cfg, cc.loader)
	runErr := daemon.NewApp(logger, mgr, holder, rt).Run(ctx)
	// The scheduler has stopped by now, so no scan still uses the store.
	return errors.Join(runErr, rt.Close(context.WithoutCancel(ctx)))
}
