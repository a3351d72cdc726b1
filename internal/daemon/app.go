// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/dvr"
)

// App owns the long-lived runtime lifecycle (config watcher, reload wiring,
// scan scheduler) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.Holder
	runtime      *Runtime
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. cfgHolder may be nil, which
// disables reloading.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.Holder, rt *Runtime) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		runtime:      rt,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Best-effort: startup does not fail if the watcher cannot be started.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		defer a.cfgHolder.Stop()
	}

	if a.cfgHolder != nil && a.runtime != nil {
		applyCh := make(chan config.Config, 1)
		a.cfgHolder.RegisterListener(applyCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.apply(cfg)
				}
			}
		})
	}

	if a.cfgHolder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.cfgHolder.Reload(context.Background()); err != nil {
						a.logger.Warn().
							Err(err).
							Str("event", "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	// The engine itself skips scheduled runs while scanning is disabled, so
	// the scheduler always runs and picks up a later enable.
	var sched *dvr.Scheduler
	if a.runtime != nil {
		scan := a.runtime.Config.Scan
		var err error
		sched, err = dvr.NewScheduler(a.runtime.Engine, scan.DailyAt, scan.StartupDelay)
		if err != nil {
			return err
		}
		sched.Start(ctx)
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	err := g.Wait()
	if sched != nil {
		<-sched.Done()
	}
	return err
}

// apply swaps the scan catalog. Host, storage and server settings are bound
// at startup and only take effect after a restart.
func (a *App) apply(cfg config.Config) {
	if err := a.runtime.Engine.Catalog().Apply(cfg); err != nil {
		a.logger.Warn().Err(err).Str("event", "config.apply_failed").Msg("reloaded configuration rejected, keeping previous catalog")
		return
	}
	old := a.runtime.Config
	for field, changed := range map[string]bool{
		"host":      !reflect.DeepEqual(old.Host, cfg.Host),
		"store":     old.Store != cfg.Store,
		"cache":     old.Cache != cfg.Cache,
		"api":       old.API != cfg.API,
		"telemetry": old.Telemetry != cfg.Telemetry,
		"notify":    old.Notify != cfg.Notify,
	} {
		if changed {
			a.logger.Warn().Str("field", field).Str("event", "config.restart_required").Msg("setting changed, restart to apply")
		}
	}
	a.logger.Info().Int("subscriptions", len(cfg.Subscriptions)).Str("event", "config.applied").Msg("scan catalog updated")
}
