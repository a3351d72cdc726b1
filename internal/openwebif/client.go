// Package openwebif talks to Enigma2 receivers through the OpenWebIF JSON API.
package openwebif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/ManuGH/sportsdvr/internal/cache"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/metrics"
)

const (
	maxResponseBytes = 16 << 20
	maxErrorBody     = 512
	breakerThreshold = 5
	breakerReset     = 30 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration

	// TimerRate limits timer writes per second; zero disables the limit.
	TimerRate  float64
	TimerBurst int

	// Cache stores per-channel guide responses for CacheTTL. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration

	HTTPClient *http.Client
}

// Client is an OpenWebIF API client. All calls go through one circuit breaker.
type Client struct {
	base     string
	username string
	password string
	http     *http.Client
	breaker  *CircuitBreaker
	limiter  *rate.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// New creates a client for the receiver at opts.BaseURL.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("openwebif: invalid base url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.TimerRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.TimerRate), max(opts.TimerBurst, 1))
	}
	c := &Client{
		base:     u.String(),
		username: opts.Username,
		password: opts.Password,
		http:     hc,
		breaker:  NewCircuitBreaker("openwebif", breakerThreshold, breakerReset),
		limiter:  limiter,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   log.WithComponent("openwebif").With().Str(log.FieldBaseURL, u.Redacted()).Logger(),
	}
	c.breaker.isFailure = countsAsFailure
	return c, nil
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// get performs a GET on path with query and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	started := time.Now()
	err := c.breaker.Execute(func() error {
		return c.do(ctx, operation, path, query, out)
	})
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordHostRequest(operation, outcome, time.Since(started).Seconds())
	if err == ErrCircuitOpen {
		return &OWIError{Sentinel: ErrUpstreamUnavailable, Operation: operation, Err: err}
	}
	return err
}

func (c *Client) do(ctx context.Context, operation, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: operation, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return transportError(operation, err)
	}
	defer func() { _ = res.Body.Close() }()

	body := io.LimitReader(res.Body, maxResponseBytes)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
		return statusError(operation, res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: operation, Status: res.StatusCode, Err: err}
	}
	return nil
}

// Services lists the channels of a bouquet, or of every bouquet when
// bouquetRef is empty. Duplicate references are returned once.
func (c *Client) Services(ctx context.Context, bouquetRef string) ([]Service, error) {
	var resp servicesResponse
	if bouquetRef != "" {
		if err := c.get(ctx, "getservices", "/api/getservices", url.Values{"sRef": {bouquetRef}}, &resp); err != nil {
			return nil, err
		}
	} else if err := c.get(ctx, "getallservices", "/api/getallservices", nil, &resp); err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var out []Service
	add := func(s Service) {
		if s.Ref == "" || isMarker(s.Ref) {
			return
		}
		if _, dup := seen[s.Ref]; dup {
			return
		}
		seen[s.Ref] = struct{}{}
		out = append(out, s)
	}
	for _, entry := range resp.Services {
		if len(entry.SubServices) > 0 {
			for _, s := range entry.SubServices {
				add(s)
			}
			continue
		}
		if bouquetRef != "" {
			add(entry.Service)
		}
	}
	return out, nil
}

// isMarker reports bouquet separators, whose service type field is 64.
func isMarker(ref string) bool {
	parts := strings.Split(ref, ":")
	return len(parts) > 1 && parts[1] == "64"
}

// EPG returns the guide of one channel. Responses are cached when a cache
// is configured.
func (c *Client) EPG(ctx context.Context, sRef string) ([]EPGEvent, error) {
	key := "epg:" + sRef
	if c.cache != nil {
		if events, ok := cache.GetJSON[[]EPGEvent](ctx, c.cache, key); ok {
			metrics.RecordEPGCacheLookup(true)
			return events, nil
		}
		metrics.RecordEPGCacheLookup(false)
	}

	var resp EPGResponse
	if err := c.get(ctx, "epgservice", "/api/epgservice", url.Values{"sRef": {sRef}}, &resp); err != nil {
		return nil, err
	}
	if c.cache != nil && c.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, c.cache, key, resp.Events, c.cacheTTL); err != nil {
			c.logger.Debug().Err(err).Str(log.FieldChannel, sRef).Msg("failed to cache guide")
		}
	}
	return resp.Events, nil
}

// Timers lists the receiver's timers.
func (c *Client) Timers(ctx context.Context) ([]Timer, error) {
	var resp timerListResponse
	if err := c.get(ctx, "timerlist", "/api/timerlist", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Timers, nil
}

// AddTimer creates a recording timer. Timer writes are rate limited.
func (c *Client) AddTimer(ctx context.Context, sRef string, begin, end int64, name, description string) error {
	q := url.Values{
		"sRef":        {sRef},
		"begin":       {strconv.FormatInt(begin, 10)},
		"end":         {strconv.FormatInt(end, 10)},
		"name":        {name},
		"description": {description},
		"justplay":    {"0"},
		"afterevent":  {"3"},
	}
	return c.timerWrite(ctx, "timeradd", "/api/timeradd", q)
}

// DeleteTimer removes a timer identified by service, begin and end.
func (c *Client) DeleteTimer(ctx context.Context, sRef string, begin, end int64) error {
	q := url.Values{
		"sRef":  {sRef},
		"begin": {strconv.FormatInt(begin, 10)},
		"end":   {strconv.FormatInt(end, 10)},
	}
	return c.timerWrite(ctx, "timerdelete", "/api/timerdelete", q)
}

func (c *Client) timerWrite(ctx context.Context, operation, path string, q url.Values) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &OWIError{Sentinel: ErrTimeout, Operation: operation, Err: err}
	}
	var resp resultResponse
	if err := c.get(ctx, operation, path, q, &resp); err != nil {
		return err
	}
	if !resp.Result {
		return timerOperationError(operation, resp.Message)
	}
	return nil
}
