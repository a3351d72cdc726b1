// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/sportsdvr/internal/log"
)

func testServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:      "127.0.0.1:0",
		ReadTimeout:     1 * time.Second,
		WriteTimeout:    1 * time.Second,
		IdleTimeout:     10 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 2 * time.Second,
	}
}

func waitReady(t *testing.T, mgr Manager) string {
	t.Helper()
	select {
	case <-mgr.Ready():
		return mgr.Addr()
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not bound")
		return ""
	}
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(testServerConfig(), Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()})
	require.NoError(t, err)

	_, err = NewManager(testServerConfig(), Deps{Logger: zerolog.Nop(), APIHandler: http.NotFoundHandler()})
	assert.ErrorIs(t, err, ErrMissingLogger)

	_, err = NewManager(testServerConfig(), Deps{Logger: log.WithComponent("test")})
	assert.ErrorIs(t, err, ErrMissingAPIHandler)
}

func TestManager_ServesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	mgr, err := NewManager(testServerConfig(), Deps{Logger: log.WithComponent("test"), APIHandler: handler})
	require.NoError(t, err)
	assert.Empty(t, mgr.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() { errChan <- mgr.Start(ctx) }()

	addr := waitReady(t, mgr)
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
	assert.NoError(t, mgr.Shutdown(context.Background()), "second shutdown is a no-op")
	assert.Error(t, mgr.Start(context.Background()), "a manager starts once")
}

func TestManager_Shutdown_NotStarted(t *testing.T) {
	mgr, err := NewManager(testServerConfig(), Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()})
	require.NoError(t, err)
	assert.ErrorIs(t, mgr.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestManager_PropagatesListenErrors(t *testing.T) {
	testServer := httptest.NewServer(http.NotFoundHandler())
	defer testServer.Close()

	cfg := testServerConfig()
	cfg.ListenAddr = testServer.Listener.Addr().String()
	mgr, err := NewManager(cfg, Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, mgr.Start(ctx), ErrServerStartFailed)
	select {
	case <-mgr.Ready():
		t.Fatal("ready must stay open when binding fails")
	default:
	}
}
