// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Defaults returns the configuration used before any file or environment
// override is applied.
func Defaults() Config {
	return Config{
		DataDir:  "/var/lib/sportsdvr",
		LogLevel: "info",
		Host: HostConfig{
			Kind:                HostOpenWebIF,
			DefaultStartPadding: 2 * time.Minute,
			DefaultEndPadding:   5 * time.Minute,
			OpenWebIF: OpenWebIFConfig{
				Timeout:        30 * time.Second,
				Concurrency:    4,
				TimerRateLimit: 2,
				TimerBurst:     4,
			},
		},
		Scan: ScanConfig{
			Enabled:       true,
			Lookahead:     24 * time.Hour,
			MaxConcurrent: 2,
			Strategy:      "tiered",
			Mode:          ModeIncremental,
			DailyAt:       "04:00",
			StartupDelay:  30 * time.Second,
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     10 * time.Minute,
		},
		API: APIConfig{
			Listen:    ":8089",
			RateLimit: 120,
		},
		Telemetry: TelemetryConfig{
			Exporter:   "grpc",
			Endpoint:   "localhost:4317",
			SampleRate: 1.0,
		},
		Notify: NotifyConfig{
			Exchange:   "sportsdvr",
			RoutingKey: "scan.completed",
		},
	}
}
