// SPDX-License-Identifier: MIT

// Package health serves liveness and readiness probes with per-component
// status.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ManuGH/sportsdvr/internal/log"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse represents the full health check response
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager manages health and readiness checks
type Manager struct {
	version  string
	timeout  time.Duration
	mu       sync.RWMutex
	checkers []Checker
	now      func() time.Time
}

// NewManager creates a new health check manager
func NewManager(version string) *Manager {
	return &Manager{
		version: version,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// RegisterChecker adds a health checker to the manager
func (m *Manager) RegisterChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// runChecks evaluates every checker under a shared timeout and returns the
// results with the worst status seen.
func (m *Manager) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	results := make(map[string]CheckResult, len(checkers))
	overall := StatusHealthy
	for _, checker := range checkers {
		result := checker.Check(ctx)
		results[checker.Name()] = result
		switch {
		case result.Status == StatusUnhealthy:
			overall = StatusUnhealthy
		case result.Status == StatusDegraded && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}
	return results, overall
}

// Health performs a health check (liveness probe).
// The process is alive regardless of component state; verbose adds the
// component checks and lets them shape the reported status.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: m.now(),
	}
	if verbose {
		resp.Checks, resp.Status = m.runChecks(ctx)
	}
	return resp
}

// Ready performs a readiness check (readiness probe).
// Any unhealthy component makes the service not ready; degraded ones do not.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	checks, status := m.runChecks(ctx)
	return ReadinessResponse{
		Ready:     status != StatusUnhealthy,
		Status:    status,
		Timestamp: m.now(),
		Checks:    checks,
	}
}

// ServeHealth handles HTTP health check requests
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "health")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Health(r.Context(), verbose)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // Always 200 for liveness

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("event", "health.encode_error").Msg("failed to encode health response")
	}

	logger.Debug().
		Str("event", "health.checked").
		Str("status", string(resp.Status)).
		Bool("verbose", verbose).
		Msg("health check performed")
}

// ServeReady handles HTTP readiness check requests
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")
	resp := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("event", "readiness.encode_error").Msg("failed to encode readiness response")
	}

	logger.Debug().
		Str("event", "readiness.checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Msg("readiness check performed")
}

// FileChecker checks if a file exists and is readable
type FileChecker struct {
	name string
	path string
}

// NewFileChecker creates a checker for file existence
func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{
		name: name,
		path: path,
	}
}

func (c *FileChecker) Name() string {
	return c.name
}

func (c *FileChecker) Check(ctx context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "not configured (optional)",
		}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusUnhealthy,
				Error:   "file not found",
				Message: c.path,
			}
		}
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  err.Error(),
		}
	}

	if info.IsDir() {
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  "expected file, got directory",
		}
	}

	if info.Size() == 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "file is empty",
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "file exists and readable",
	}
}

// CheckFunc adapts a function to the Checker interface.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewCheckFunc creates a named checker from fn.
func NewCheckFunc(name string, fn func(ctx context.Context) CheckResult) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Name() string {
	return c.name
}

func (c *CheckFunc) Check(ctx context.Context) CheckResult {
	return c.fn(ctx)
}

// PingChecker turns a connectivity probe into a check. A failing ping is
// degraded, not unhealthy, when optional is set.
func PingChecker(name string, optional bool, ping func(ctx context.Context) error) *CheckFunc {
	return NewCheckFunc(name, func(ctx context.Context) CheckResult {
		if err := ping(ctx); err != nil {
			status := StatusUnhealthy
			if optional {
				status = StatusDegraded
			}
			return CheckResult{Status: status, Error: err.Error()}
		}
		return CheckResult{Status: StatusHealthy}
	})
}

// LastScan describes the most recent scan for LastScanChecker.
type LastScan struct {
	FinishedAt time.Time
	Status     string
}

// LastScanChecker reports the outcome and age of the most recent scan.
type LastScanChecker struct {
	latest func() (LastScan, bool)
	maxAge time.Duration
	now    func() time.Time
}

// NewLastScanChecker creates a checker over latest. A successful scan older
// than maxAge is degraded.
func NewLastScanChecker(latest func() (LastScan, bool), maxAge time.Duration) *LastScanChecker {
	return &LastScanChecker{latest: latest, maxAge: maxAge, now: time.Now}
}

func (c *LastScanChecker) Name() string {
	return "last_scan"
}

func (c *LastScanChecker) Check(_ context.Context) CheckResult {
	last, ok := c.latest()
	if !ok {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "no scan has run yet",
		}
	}

	switch last.Status {
	case "failed":
		return CheckResult{
			Status:  StatusDegraded,
			Message: "last scan failed",
		}
	case "partial":
		return CheckResult{
			Status:  StatusDegraded,
			Message: "last scan finished with errors",
		}
	}

	if c.maxAge > 0 && c.now().Sub(last.FinishedAt) > c.maxAge {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "last scan is older than " + c.maxAge.String(),
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "last scan " + last.Status,
	}
}
