// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before the daemon starts.
func PerformStartupChecks(ctx context.Context, cfg config.Config) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkDataDir(logger, cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}
	if err := checkTargetedValidations(logger, cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	if path == "" {
		return fmt.Errorf("data directory not configured")
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(testFile)

	logger.Info().Str("path", path).Msg("data directory is writable")
	return nil
}

// checkTargetedValidations performs runtime-critical validations the static
// config validation cannot do.
func checkTargetedValidations(logger zerolog.Logger, cfg config.Config) error {
	if cfg.API.Listen != "" {
		_, port, err := net.SplitHostPort(cfg.API.Listen)
		if err != nil {
			return fmt.Errorf("invalid API listen address %q: %w", cfg.API.Listen, err)
		}
		portNum, err := strconv.Atoi(port)
		if err != nil || portNum < 0 || portNum > 65535 {
			return fmt.Errorf("invalid API listen port %q in %q", port, cfg.API.Listen)
		}
	}

	switch cfg.Host.Kind {
	case config.HostOpenWebIF:
		u, err := url.Parse(cfg.Host.OpenWebIF.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid openwebif base url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("openwebif base url scheme must be http or https, got: %s", u.Scheme)
		}
		logger.Info().Str(log.FieldBaseURL, u.Redacted()).Msg("openwebif base url is valid")
	case config.HostLocal:
		if err := checkFileReadable(cfg.Host.Local.XMLTVPath); err != nil {
			return fmt.Errorf("xmltv guide: %w", err)
		}
	}

	if strings.EqualFold(cfg.Store.Backend, "memory") {
		logger.Warn().
			Str("store_backend", cfg.Store.Backend).
			Msg("in-memory store; owned timers are forgotten on restart")
	}

	tempDir := filepath.Clean(os.TempDir())
	dataDir := filepath.Clean(cfg.DataDir)
	if tempDir != "." && (dataDir == tempDir || strings.HasPrefix(dataDir, tempDir+string(filepath.Separator))) {
		logger.Warn().
			Str("data_dir", cfg.DataDir).
			Msg("data directory is under temp; reports and the ledger may be lost on reboot")
	}
	return nil
}

func checkFileReadable(path string) error {
	f, err := os.Open(path) // #nosec G304 -- path comes from operator config; verifying readability is expected
	if err != nil {
		return err
	}
	return f.Close()
}
