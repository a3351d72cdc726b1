// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Manager runs the HTTP API server for the lifetime of the daemon.
type Manager interface {
	// Start binds the listener and serves until ctx is cancelled or the
	// server fails.
	Start(ctx context.Context) error

	// Shutdown drains in-flight requests within the configured timeout.
	Shutdown(ctx context.Context) error

	// Ready is closed once the listener is bound.
	Ready() <-chan struct{}

	// Addr is the bound listen address, empty before Ready.
	Addr() string
}

// Deps are the collaborators a Manager needs.
type Deps struct {
	Logger     zerolog.Logger
	APIHandler http.Handler
}

// Validate rejects a disabled logger and a missing handler.
func (d Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}

// ServerConfig holds the HTTP server parameters.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// DefaultServerConfig listens on addr. The write timeout covers a synchronous
// scan triggered over the API.
func DefaultServerConfig(addr string) ServerConfig {
	return ServerConfig{
		ListenAddr:      addr,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    15 * time.Minute,
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 30 * time.Second,
	}
}

type manager struct {
	cfg    ServerConfig
	server *http.Server
	logger zerolog.Logger

	mu       sync.Mutex
	started  bool
	stopping bool
	addr     string
	ready    chan struct{}
}

// NewManager validates deps and prepares the server without binding it.
func NewManager(cfg ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	return &manager{
		cfg:    cfg,
		logger: deps.Logger.With().Str("component", "manager").Logger(),
		ready:  make(chan struct{}),
		server: &http.Server{
			Handler:           deps.APIHandler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout / 2,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}, nil
}

func (m *manager) Ready() <-chan struct{} { return m.ready }

func (m *manager) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr
}

func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	ln, err := net.Listen("tcp", m.cfg.ListenAddr)
	if err != nil {
		m.logger.Error().Err(err).Str("event", "api.listen_failed").Str("listen", m.cfg.ListenAddr).Msg("cannot bind API listener")
		return fmt.Errorf("%w: %w", ErrServerStartFailed, err)
	}
	m.mu.Lock()
	m.addr = ln.Addr().String()
	m.mu.Unlock()
	close(m.ready)

	m.logger.Info().
		Str("event", "api.listening").
		Str("addr", ln.Addr().String()).
		Dur("write_timeout", m.cfg.WriteTimeout).
		Msg("API server listening")

	serveErr := make(chan error, 1)
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err == nil {
			return nil
		}
		m.logger.Error().Err(err).Str("event", "api.serve_failed").Msg("API server failed")
		return errors.Join(fmt.Errorf("%w: %w", ErrServerStartFailed, err), m.Shutdown(context.WithoutCancel(ctx)))
	case <-ctx.Done():
		m.logger.Info().Str("event", "api.stopping").Msg("shutdown signal received")
		if err := m.Shutdown(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		<-serveErr
		return nil
	}
}

func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	m.stopping = true
	m.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, m.cfg.ShutdownTimeout)
	defer cancel()
	start := time.Now()
	if err := m.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	m.logger.Info().Dur("took", time.Since(start)).Str("event", "api.stopped").Msg("API server stopped")
	return nil
}
