// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sportsdvr/internal/config"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health_NoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")

	resp := m.Health(context.Background(), true)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Empty(t, resp.Checks)
}

func TestManager_Health_Verbose(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "store", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "cache", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		ready    bool
		want     Status
	}{
		{"no checkers", nil, true, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, true, StatusHealthy},
		{"degraded stays ready", []Status{StatusHealthy, StatusDegraded}, true, StatusDegraded},
		{"unhealthy wins", []Status{StatusUnhealthy, StatusDegraded}, false, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("test")
			for i, s := range tt.statuses {
				m.RegisterChecker(&mockChecker{name: string(rune('a' + i)), status: s})
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.ready, resp.Ready)
			assert.Equal(t, tt.want, resp.Status)
		})
	}
}

func TestServeHealthAndReady(t *testing.T) {
	m := NewManager("v2")
	m.RegisterChecker(&mockChecker{name: "host", status: StatusUnhealthy})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "liveness ignores components")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Ready)
	assert.Equal(t, StatusUnhealthy, body.Checks["host"].Status)
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "guide.xml")
	empty := filepath.Join(dir, "empty.xml")
	require.NoError(t, os.WriteFile(full, []byte("<tv/>"), 0o600))
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		path string
		want Status
	}{
		{"", StatusHealthy},
		{full, StatusHealthy},
		{empty, StatusDegraded},
		{dir, StatusUnhealthy},
		{filepath.Join(dir, "missing.xml"), StatusUnhealthy},
	}
	for _, tt := range tests {
		got := NewFileChecker("xmltv", tt.path).Check(context.Background())
		assert.Equal(t, tt.want, got.Status, tt.path)
	}
}

func TestPingChecker(t *testing.T) {
	ok := PingChecker("redis", true, func(context.Context) error { return nil })
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)
	assert.Equal(t, "redis", ok.Name())

	down := func(context.Context) error { return errors.New("connection refused") }
	optional := PingChecker("redis", true, down).Check(context.Background())
	assert.Equal(t, StatusDegraded, optional.Status)
	assert.Equal(t, "connection refused", optional.Error)
	assert.Equal(t, StatusUnhealthy, PingChecker("host", false, down).Check(context.Background()).Status)
}

func TestLastScanChecker(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		last LastScan
		ok   bool
		want Status
	}{
		{"never ran", LastScan{}, false, StatusDegraded},
		{"recent success", LastScan{FinishedAt: now.Add(-time.Hour), Status: "success"}, true, StatusHealthy},
		{"failed", LastScan{FinishedAt: now, Status: "failed"}, true, StatusDegraded},
		{"partial", LastScan{FinishedAt: now, Status: "partial"}, true, StatusDegraded},
		{"stale", LastScan{FinishedAt: now.Add(-48 * time.Hour), Status: "success"}, true, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLastScanChecker(func() (LastScan, bool) { return tt.last, tt.ok }, 26*time.Hour)
			c.now = func() time.Time { return now }
			assert.Equal(t, tt.want, c.Check(context.Background()).Status)
			assert.Equal(t, "last_scan", c.Name())
		})
	}
}

func TestPerformStartupChecks(t *testing.T) {
	dir := t.TempDir()
	guide := filepath.Join(dir, "guide.xml")
	require.NoError(t, os.WriteFile(guide, []byte("<tv/>"), 0o600))

	cfg := config.Defaults()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Host.Kind = config.HostLocal
	cfg.Host.Local.XMLTVPath = guide
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))
	assert.DirExists(t, cfg.DataDir)

	bad := cfg
	bad.Host.Local.XMLTVPath = filepath.Join(dir, "missing.xml")
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), bad), "xmltv guide")

	bad = cfg
	bad.API.Listen = "localhost"
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), bad), "listen address")

	bad = cfg
	bad.Host.Kind = config.HostOpenWebIF
	bad.Host.OpenWebIF.BaseURL = "ftp://receiver"
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), bad), "scheme")
}
