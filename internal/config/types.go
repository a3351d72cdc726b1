// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads and validates the sportsdvr configuration.
package config

import (
	"time"

	"github.com/ManuGH/sportsdvr/internal/subscription"
)

// Host kinds.
const (
	HostOpenWebIF = "openwebif"
	HostLocal     = "local"
)

// Scan modes.
const (
	ModeIncremental = "incremental"
	ModeFull        = "full"
)

// Concurrency cap bounds; out-of-range values are clamped.
const (
	MinConcurrent = 1
	MaxConcurrent = 16
)

// Config is the complete application configuration.
type Config struct {
	DataDir       string                    `yaml:"data_dir"`
	LogLevel      string                    `yaml:"log_level"`
	Host          HostConfig                `yaml:"host"`
	Scan          ScanConfig                `yaml:"scan"`
	Store         StoreConfig               `yaml:"store"`
	Cache         CacheConfig               `yaml:"cache"`
	API           APIConfig                 `yaml:"api"`
	Telemetry     TelemetryConfig           `yaml:"telemetry"`
	Notify        NotifyConfig              `yaml:"notify"`
	Aliases       map[string][]string       `yaml:"aliases,omitempty"`
	LiveRules     []subscription.LiveRule   `yaml:"live_rules,omitempty"`
	Subscriptions []subscription.Definition `yaml:"subscriptions"`

	// Version is set from the binary, never from the file.
	Version string `yaml:"-"`
}

// HostConfig selects and configures the DVR host adapter.
type HostConfig struct {
	Kind                string          `yaml:"kind"`
	DefaultStartPadding time.Duration   `yaml:"default_start_padding"`
	DefaultEndPadding   time.Duration   `yaml:"default_end_padding"`
	OpenWebIF           OpenWebIFConfig `yaml:"openwebif"`
	Local               LocalConfig     `yaml:"local"`
}

// OpenWebIFConfig configures an Enigma2 receiver.
type OpenWebIFConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Username       string        `yaml:"username,omitempty"`
	Password       string        `yaml:"password,omitempty"`
	Bouquet        string        `yaml:"bouquet,omitempty"`
	Timeout        time.Duration `yaml:"timeout"`
	Concurrency    int           `yaml:"concurrency"`
	TimerRateLimit float64       `yaml:"timer_rate_limit"`
	TimerBurst     int           `yaml:"timer_burst"`
}

// LocalConfig configures the file-backed host.
type LocalConfig struct {
	XMLTVPath string   `yaml:"xmltv_path"`
	Language  string   `yaml:"language,omitempty"`
	Channels  []string `yaml:"channels,omitempty"`
}

// ScanConfig controls the scan pipeline and its triggers.
type ScanConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Lookahead     time.Duration `yaml:"lookahead"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Strategy      string        `yaml:"strategy"`
	Mode          string        `yaml:"mode"`
	DailyAt       string        `yaml:"daily_at"`
	StartupDelay  time.Duration `yaml:"startup_delay"`
	LockFile      string        `yaml:"lock_file,omitempty"`
}

// StoreConfig selects the owned-timer ledger backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// CacheConfig configures the EPG response cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redis_db,omitempty"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	Listen    string `yaml:"listen"`
	RateLimit int    `yaml:"rate_limit"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Exporter   string  `yaml:"exporter"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sample_rate"`
}

// NotifyConfig configures AMQP publication of scan summaries.
type NotifyConfig struct {
	AMQPURL    string `yaml:"amqp_url,omitempty"`
	Exchange   string `yaml:"exchange,omitempty"`
	RoutingKey string `yaml:"routing_key,omitempty"`
}

// Enabled reports whether notifications are configured.
func (n NotifyConfig) Enabled() bool {
	return n.AMQPURL != ""
}
