// SPDX-License-Identifier: MIT

// Package daemon wires configuration into a running service: storage, cache,
// host adapter, scan engine, scheduler and the HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/sportsdvr/internal/cache"
	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/epg"
	"github.com/ManuGH/sportsdvr/internal/health"
	"github.com/ManuGH/sportsdvr/internal/host/local"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/notify"
	"github.com/ManuGH/sportsdvr/internal/openwebif"
	"github.com/ManuGH/sportsdvr/internal/store"
	"github.com/ManuGH/sportsdvr/internal/telemetry"
)

// lastScanMaxAge tolerates one missed daily run before the last scan is
// reported stale.
const lastScanMaxAge = 26 * time.Hour

// Runtime holds every long-lived component built from one configuration.
type Runtime struct {
	Config config.Config
	Store  store.Store
	Cache  cache.Cache
	Host   dvr.Host
	Engine *dvr.Engine
	Health *health.Manager

	telemetry *telemetry.Provider
	notifier  *notify.Publisher
	logger    zerolog.Logger
}

// Build opens storage and constructs the host adapter and scan engine. The
// caller owns the returned runtime and must Close it.
func Build(ctx context.Context, cfg config.Config) (_ *Runtime, err error) {
	rt := &Runtime{
		Config: cfg,
		Health: health.NewManager(cfg.Version),
		logger: log.WithComponent("daemon"),
	}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
		}
	}()

	rt.initTelemetry(ctx)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if rt.Store, err = store.Open(cfg.Store.Backend, cfg.Store.Path); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.Cache, err = cache.New(cache.Options{
		Backend: cfg.Cache.Backend,
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		},
	}, log.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if rc, ok := rt.Cache.(*cache.RedisCache); ok {
		rt.Health.RegisterChecker(health.PingChecker("cache", true, rc.HealthCheck))
	}

	if rt.Host, err = rt.buildHost(cfg); err != nil {
		return nil, err
	}

	catalog := dvr.NewCatalog(nil)
	if err := catalog.Apply(cfg); err != nil {
		return nil, fmt.Errorf("apply config: %w", err)
	}

	opts := []dvr.EngineOption{
		dvr.WithReportsDir(cfg.ReportsDir()),
		dvr.WithLockFile(cfg.Scan.LockFile),
	}
	if cfg.Notify.Enabled() {
		rt.notifier = notify.NewPublisher(cfg.Notify.AMQPURL, cfg.Notify.Exchange, cfg.Notify.RoutingKey)
		opts = append(opts, dvr.WithNotifier(rt.notifier))
	}
	rt.Engine = dvr.NewEngine(catalog, rt.Host, rt.Store, opts...)
	rt.Health.RegisterChecker(health.NewLastScanChecker(rt.lastScan, lastScanMaxAge))

	rt.logger.Info().
		Str("host", cfg.Host.Kind).
		Str("store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Int("subscriptions", len(cfg.Subscriptions)).
		Bool("notify", cfg.Notify.Enabled()).
		Msg("runtime initialized")
	return rt, nil
}

func (rt *Runtime) initTelemetry(ctx context.Context) {
	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        rt.Config.Telemetry.Enabled,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: rt.Config.Version,
		Environment:    getEnvOrDefault("SPORTSDVR_ENVIRONMENT", "production"),
		ExporterType:   rt.Config.Telemetry.Exporter,
		Endpoint:       rt.Config.Telemetry.Endpoint,
		SamplingRate:   rt.Config.Telemetry.SampleRate,
	})
	if err != nil {
		rt.logger.Warn().Err(err).Msg("Telemetry initialization failed, continuing without tracing")
		return
	}
	rt.telemetry = provider
	if rt.Config.Telemetry.Enabled {
		rt.logger.Info().
			Str("endpoint", rt.Config.Telemetry.Endpoint).
			Float64("sampling_rate", rt.Config.Telemetry.SampleRate).
			Msg("Telemetry initialized")
	}
}

func (rt *Runtime) buildHost(cfg config.Config) (dvr.Host, error) {
	switch cfg.Host.Kind {
	case config.HostOpenWebIF:
		owi := cfg.Host.OpenWebIF
		client, err := openwebif.New(openwebif.Options{
			BaseURL:    owi.BaseURL,
			Username:   owi.Username,
			Password:   owi.Password,
			Timeout:    owi.Timeout,
			TimerRate:  owi.TimerRateLimit,
			TimerBurst: owi.TimerBurst,
			Cache:      rt.Cache,
			CacheTTL:   cfg.Cache.TTL,
		})
		if err != nil {
			return nil, err
		}
		rt.Health.RegisterChecker(health.NewCheckFunc("openwebif", breakerCheck(client.Breaker())))
		return openwebif.NewHost(client, owi.Bouquet, owi.Concurrency), nil
	case config.HostLocal:
		lc := cfg.Host.Local
		rt.Health.RegisterChecker(health.NewFileChecker("xmltv", lc.XMLTVPath))
		return local.New(epg.NewXMLTVSource(lc.XMLTVPath, lc.Language, lc.Channels), rt.Store), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHost, cfg.Host.Kind)
	}
}

// breakerCheck maps the receiver circuit state to a health status.
func breakerCheck(cb *openwebif.CircuitBreaker) func(context.Context) health.CheckResult {
	return func(context.Context) health.CheckResult {
		switch cb.State() {
		case openwebif.StateOpen:
			return health.CheckResult{Status: health.StatusUnhealthy, Message: "receiver circuit open"}
		case openwebif.StateHalfOpen:
			return health.CheckResult{Status: health.StatusDegraded, Message: "receiver recovering"}
		default:
			return health.CheckResult{Status: health.StatusHealthy}
		}
	}
}

func (rt *Runtime) lastScan() (health.LastScan, bool) {
	r, ok := rt.Engine.LatestReport()
	if !ok {
		return health.LastScan{}, false
	}
	return health.LastScan{FinishedAt: r.FinishedAt, Status: r.Status}, true
}

// Close releases every component in reverse construction order.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.notifier != nil {
		if err := rt.notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %w", err))
		}
	}
	if rt.Cache != nil {
		if err := rt.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	if rt.Store != nil {
		if err := rt.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if rt.telemetry != nil {
		if err := rt.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}
	return errors.Join(errs...)
}

// WaitForShutdown returns a context cancelled on interrupt or termination.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
