// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/sportsdvr/internal/log"
)

// Loader handles configuration loading with precedence
// ENV > .env file > YAML file > defaults.
type Loader struct {
	configPath      string
	envFile         string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. envFile may be empty.
func NewLoader(configPath, envFile, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		envFile:         envFile,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the YAML file path, if any.
func (l *Loader) Path() string {
	return l.configPath
}

// Load loads, normalizes and validates the configuration.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if l.envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load env file: %w", err)
		}
	}
	l.mergeEnv(&cfg)

	normalize(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields are fatal to prevent silent misconfiguration.
func (l *Loader) loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) key(name string) string {
	k := EnvPrefix + name
	l.ConsumedEnvKeys[k] = struct{}{}
	return k
}

func (l *Loader) mergeEnv(cfg *Config) {
	cfg.DataDir = ParseString(l.key("DATA_DIR"), cfg.DataDir)
	cfg.LogLevel = ParseString(l.key("LOG_LEVEL"), cfg.LogLevel)

	cfg.Host.Kind = ParseString(l.key("HOST_KIND"), cfg.Host.Kind)
	cfg.Host.DefaultStartPadding = ParseDuration(l.key("START_PADDING"), cfg.Host.DefaultStartPadding)
	cfg.Host.DefaultEndPadding = ParseDuration(l.key("END_PADDING"), cfg.Host.DefaultEndPadding)
	cfg.Host.OpenWebIF.BaseURL = ParseString(l.key("OWI_BASE_URL"), cfg.Host.OpenWebIF.BaseURL)
	cfg.Host.OpenWebIF.Username = ParseString(l.key("OWI_USERNAME"), cfg.Host.OpenWebIF.Username)
	cfg.Host.OpenWebIF.Password = ParseString(l.key("OWI_PASSWORD"), cfg.Host.OpenWebIF.Password)
	cfg.Host.OpenWebIF.Bouquet = ParseString(l.key("OWI_BOUQUET"), cfg.Host.OpenWebIF.Bouquet)
	cfg.Host.OpenWebIF.Timeout = ParseDuration(l.key("OWI_TIMEOUT"), cfg.Host.OpenWebIF.Timeout)
	cfg.Host.Local.XMLTVPath = ParseString(l.key("XMLTV_PATH"), cfg.Host.Local.XMLTVPath)

	cfg.Scan.Enabled = ParseBool(l.key("SCAN_ENABLED"), cfg.Scan.Enabled)
	cfg.Scan.Lookahead = ParseDuration(l.key("LOOKAHEAD"), cfg.Scan.Lookahead)
	cfg.Scan.MaxConcurrent = ParseInt(l.key("MAX_CONCURRENT"), cfg.Scan.MaxConcurrent)
	cfg.Scan.Strategy = ParseString(l.key("SCAN_STRATEGY"), cfg.Scan.Strategy)
	cfg.Scan.Mode = ParseString(l.key("SCAN_MODE"), cfg.Scan.Mode)
	cfg.Scan.DailyAt = ParseString(l.key("DAILY_AT"), cfg.Scan.DailyAt)
	cfg.Scan.StartupDelay = ParseDuration(l.key("STARTUP_DELAY"), cfg.Scan.StartupDelay)
	cfg.Scan.LockFile = ParseString(l.key("LOCK_FILE"), cfg.Scan.LockFile)

	cfg.Store.Backend = ParseString(l.key("STORE_BACKEND"), cfg.Store.Backend)
	cfg.Store.Path = ParseString(l.key("STORE_PATH"), cfg.Store.Path)

	cfg.Cache.Backend = ParseString(l.key("CACHE_BACKEND"), cfg.Cache.Backend)
	cfg.Cache.TTL = ParseDuration(l.key("CACHE_TTL"), cfg.Cache.TTL)
	cfg.Cache.RedisAddr = ParseString(l.key("REDIS_ADDR"), cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = ParseString(l.key("REDIS_PASSWORD"), cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = ParseInt(l.key("REDIS_DB"), cfg.Cache.RedisDB)

	cfg.API.Listen = ParseString(l.key("API_LISTEN"), cfg.API.Listen)
	cfg.API.RateLimit = ParseInt(l.key("API_RATE_LIMIT"), cfg.API.RateLimit)

	cfg.Telemetry.Enabled = ParseBool(l.key("OTEL_ENABLED"), cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = ParseString(l.key("OTEL_EXPORTER"), cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = ParseString(l.key("OTEL_ENDPOINT"), cfg.Telemetry.Endpoint)
	cfg.Telemetry.SampleRate = ParseFloat(l.key("OTEL_SAMPLE_RATE"), cfg.Telemetry.SampleRate)

	cfg.Notify.AMQPURL = ParseString(l.key("AMQP_URL"), cfg.Notify.AMQPURL)
	cfg.Notify.Exchange = ParseString(l.key("AMQP_EXCHANGE"), cfg.Notify.Exchange)
	cfg.Notify.RoutingKey = ParseString(l.key("AMQP_ROUTING_KEY"), cfg.Notify.RoutingKey)
}

// normalize clamps ranges and fills derived paths.
func normalize(cfg *Config) {
	logger := log.WithComponent("config")

	if cfg.Scan.MaxConcurrent < MinConcurrent || cfg.Scan.MaxConcurrent > MaxConcurrent {
		clamped := min(max(cfg.Scan.MaxConcurrent, MinConcurrent), MaxConcurrent)
		logger.Warn().
			Int("configured", cfg.Scan.MaxConcurrent).
			Int("effective", clamped).
			Msg("scan.max_concurrent out of range, clamped")
		cfg.Scan.MaxConcurrent = clamped
	}

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case "sqlite":
			cfg.Store.Path = filepath.Join(cfg.DataDir, "sportsdvr.db")
		case "badger":
			cfg.Store.Path = filepath.Join(cfg.DataDir, "badger")
		}
	}
	if cfg.Scan.LockFile == "" {
		cfg.Scan.LockFile = filepath.Join(cfg.DataDir, "scan.lock")
	}
	cfg.Host.Kind = strings.ToLower(strings.TrimSpace(cfg.Host.Kind))
	cfg.Scan.Mode = strings.ToLower(strings.TrimSpace(cfg.Scan.Mode))
}

// ReportsDir is where run reports are persisted.
func (c Config) ReportsDir() string {
	return filepath.Join(c.DataDir, "reports")
}
