// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/health"
	"github.com/ManuGH/sportsdvr/internal/subscription"
)

type fakeScanner struct {
	mu      sync.Mutex
	catalog *dvr.Catalog
	report  *dvr.RunReport
	err     error
	latest  *dvr.RunReport
	calls   []dvr.RunRequest
	ctxErr  error
}

func (f *fakeScanner) Run(ctx context.Context, req dvr.RunRequest) (*dvr.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	f.ctxErr = ctx.Err()
	return f.report, f.err
}

func (f *fakeScanner) LatestReport() (*dvr.RunReport, bool) {
	return f.latest, f.latest != nil
}

func (f *fakeScanner) Catalog() *dvr.Catalog { return f.catalog }

func newScanner(t *testing.T) *fakeScanner {
	t.Helper()
	cfg := config.Defaults()
	cfg.Subscriptions = []subscription.Definition{
		{ID: "lakers", Name: "Lakers", Kind: subscription.KindTeam, Match: "Lakers", Exclude: []string{"Summer League"}},
	}
	catalog := dvr.NewCatalog(nil)
	require.NoError(t, catalog.Apply(cfg))
	return &fakeScanner{catalog: catalog}
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestScan(t *testing.T) {
	report := &dvr.RunReport{RunID: "r1", Status: dvr.StatusSuccess}
	tests := []struct {
		name   string
		report *dvr.RunReport
		err    error
		want   int
		code   string
	}{
		{"success", report, nil, http.StatusOK, ""},
		{"in progress", nil, dvr.ErrScanInProgress, http.StatusConflict, "scan_in_progress"},
		{"invalid mode", nil, dvr.ErrInvalidMode, http.StatusBadRequest, "bad_request"},
		{"failed with report", &dvr.RunReport{RunID: "r2", Status: dvr.StatusFailed}, errors.New("host down"), http.StatusBadGateway, ""},
		{"failed without report", nil, errors.New("lock"), http.StatusInternalServerError, "scan_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newScanner(t)
			sc.report, sc.err = tt.report, tt.err
			rec := serve(New(Options{Scanner: sc}), http.MethodPost, "/api/v1/scan?mode=full", "")

			assert.Equal(t, tt.want, rec.Code)
			require.Len(t, sc.calls, 1)
			assert.Equal(t, dvr.RunRequest{Trigger: dvr.TriggerAPI, Mode: "full"}, sc.calls[0])
			if tt.code != "" {
				assert.Equal(t, tt.code, decode[problem](t, rec).Code)
			} else {
				assert.Equal(t, tt.report.RunID, decode[dvr.RunReport](t, rec).RunID)
			}
		})
	}
}

func TestScan_SurvivesClientCancel(t *testing.T) {
	sc := newScanner(t)
	sc.report = &dvr.RunReport{RunID: "r1", Status: dvr.StatusSuccess}
	s := New(Options{Scanner: sc})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil).WithContext(ctx)
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, sc.calls, 1)
	assert.NoError(t, sc.ctxErr)
}

func TestLatestReport(t *testing.T) {
	sc := newScanner(t)
	s := New(Options{Scanner: sc})

	rec := serve(s, http.MethodGet, "/api/v1/reports/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	sc.latest = &dvr.RunReport{RunID: "r9", Status: dvr.StatusPartial}
	rec = serve(s, http.MethodGet, "/api/v1/reports/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dvr.RunReport](t, rec)
	assert.Equal(t, "r9", got.RunID)
	assert.Equal(t, dvr.StatusPartial, got.Status)
}

func TestSubscriptions(t *testing.T) {
	rec := serve(New(Options{Scanner: newScanner(t)}), http.MethodGet, "/api/v1/subscriptions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[subscriptionsResponse](t, rec)
	require.Len(t, got.Subscriptions, 1)
	sub := got.Subscriptions[0]
	assert.Equal(t, "lakers", sub.ID)
	assert.Equal(t, "team", sub.Kind)
	assert.Equal(t, "Lakers", sub.Match)
	assert.Equal(t, []string{"Summer League"}, sub.Exclude)
	assert.True(t, sub.Enabled)
}

func TestClassify(t *testing.T) {
	s := New(Options{Scanner: newScanner(t)})
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	rec := serve(s, http.MethodPost, "/api/v1/classify",
		`{"title":"Lakers vs Celtics","channel":"ESPN","is_live":true,"start":"2025-03-01T19:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dvr.Explanation](t, rec)
	assert.True(t, got.LikelyGame)
	assert.Equal(t, subscription.ReasonMatched, got.Decision.Reason)
	assert.Equal(t, "lakers", got.Decision.SubscriptionID)
	assert.Equal(t, 2*time.Hour, got.Program.Duration())

	rec = serve(s, http.MethodPost, "/api/v1/classify", `{"title":"Evening News","channel":"CNN"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dvr.ReasonNotSports, decode[dvr.Explanation](t, rec).Decision.Reason)
}

func TestClassify_BadRequests(t *testing.T) {
	s := New(Options{Scanner: newScanner(t)})
	for _, body := range []string{
		`{"title":""}`,
		`{"title":"x","duration":"-1h"}`,
		`{"title":"x","unknown":1}`,
		`not json`,
	} {
		rec := serve(s, http.MethodPost, "/api/v1/classify", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "bad_request", decode[problem](t, rec).Code, body)
	}
}

func TestRateLimit(t *testing.T) {
	s := New(Options{Scanner: newScanner(t), RateLimit: 1})

	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/api/v1/reports/latest", "").Code)
	rec := serve(s, http.MethodGet, "/api/v1/reports/latest", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[problem](t, rec).Code)

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/healthz", "").Code, "probes are not limited")
}

func TestProbesAndMetrics(t *testing.T) {
	m := health.NewManager("v1")
	m.RegisterChecker(health.PingChecker("host", false, func(context.Context) error { return errors.New("down") }))
	s := New(Options{Scanner: newScanner(t), Health: m})

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/readyz", "").Code)

	serve(s, http.MethodGet, "/api/v1/subscriptions", "")
	rec := serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sportsdvr_http_request_duration_seconds_count{method="GET",path="/api/v1/subscriptions",status="200"}`)
}

func TestRequestID(t *testing.T) {
	s := New(Options{Scanner: newScanner(t)})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = serve(s, http.MethodGet, "/healthz", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestNotFoundAndMethod(t *testing.T) {
	s := New(Options{Scanner: newScanner(t)})
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, http.MethodGet, "/api/v1/scan", "").Code)
}

func TestRecoverer(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decode[problem](t, rec).Code)
}
