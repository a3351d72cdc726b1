// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/sportsdvr/internal/schedule"
	"github.com/ManuGH/sportsdvr/internal/subscription"
	"github.com/ManuGH/sportsdvr/internal/validate"
)

// Validate checks a loaded configuration. Every failure is wrapped in ErrInvalid.
func Validate(cfg Config) error {
	v := validate.New()

	v.NotEmpty("data_dir", cfg.DataDir)
	v.OneOf("log_level", strings.ToLower(cfg.LogLevel), validate.LogLevels)

	v.OneOf("host.kind", cfg.Host.Kind, []string{HostOpenWebIF, HostLocal})
	switch cfg.Host.Kind {
	case HostOpenWebIF:
		v.URL("host.openwebif.base_url", cfg.Host.OpenWebIF.BaseURL, []string{"http", "https"})
		v.PositiveDuration("host.openwebif.timeout", cfg.Host.OpenWebIF.Timeout)
		v.Range("host.openwebif.concurrency", cfg.Host.OpenWebIF.Concurrency, 1, 32)
		if cfg.Host.OpenWebIF.TimerRateLimit <= 0 {
			v.AddError("host.openwebif.timer_rate_limit", "must be positive", cfg.Host.OpenWebIF.TimerRateLimit)
		}
		v.Positive("host.openwebif.timer_burst", cfg.Host.OpenWebIF.TimerBurst)
	case HostLocal:
		v.NotEmpty("host.local.xmltv_path", cfg.Host.Local.XMLTVPath)
	}
	v.NonNegativeDuration("host.default_start_padding", cfg.Host.DefaultStartPadding)
	v.NonNegativeDuration("host.default_end_padding", cfg.Host.DefaultEndPadding)

	v.PositiveDuration("scan.lookahead", cfg.Scan.Lookahead)
	v.Range("scan.max_concurrent", cfg.Scan.MaxConcurrent, MinConcurrent, MaxConcurrent)
	if _, err := schedule.ParseStrategy(cfg.Scan.Strategy); err != nil {
		v.AddError("scan.strategy", err.Error(), cfg.Scan.Strategy)
	}
	v.OneOf("scan.mode", cfg.Scan.Mode, []string{ModeIncremental, ModeFull})
	if cfg.Scan.DailyAt != "" {
		v.ClockTime("scan.daily_at", cfg.Scan.DailyAt)
	}
	v.NonNegativeDuration("scan.startup_delay", cfg.Scan.StartupDelay)

	v.OneOf("store.backend", cfg.Store.Backend, []string{"memory", "sqlite", "badger"})
	v.OneOf("cache.backend", cfg.Cache.Backend, []string{"none", "memory", "redis"})
	if cfg.Cache.Backend == "redis" {
		v.NotEmpty("cache.redis_addr", cfg.Cache.RedisAddr)
	}
	v.NonNegativeDuration("cache.ttl", cfg.Cache.TTL)

	v.NotEmpty("api.listen", cfg.API.Listen)
	if cfg.API.RateLimit < 0 {
		v.AddError("api.rate_limit", "cannot be negative", cfg.API.RateLimit)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.sample_rate", cfg.Telemetry.SampleRate, 0, 1)
	}

	if cfg.Notify.Enabled() {
		v.URL("notify.amqp_url", cfg.Notify.AMQPURL, []string{"amqp", "amqps"})
		v.NotEmpty("notify.exchange", cfg.Notify.Exchange)
	}

	ids := make([]string, 0, len(cfg.Subscriptions))
	for i, def := range cfg.Subscriptions {
		field := fmt.Sprintf("subscriptions[%d]", i)
		if err := def.Validate(); err != nil {
			v.AddError(field, err.Error(), def.ID)
		}
		ids = append(ids, def.ID)
	}
	v.Unique("subscriptions.id", ids)

	if _, err := subscription.CompileLiveRules(cfg.LiveRules); err != nil {
		v.AddError("live_rules", err.Error(), len(cfg.LiveRules))
	}

	for canonical, aliases := range cfg.Aliases {
		if strings.TrimSpace(canonical) == "" {
			v.AddError("aliases", "canonical name cannot be empty", aliases)
		}
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
