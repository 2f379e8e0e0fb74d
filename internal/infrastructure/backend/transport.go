package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/api/metrics"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultConcurrent = 32
	maxBodyBytes      = 8 << 20
)

// TransportConfig configures the HTTP leg to the ERP backend.
type TransportConfig struct {
	BaseURL string
	Timeout time.Duration
	// MaxConcurrent caps in-flight backend requests across all sessions.
	MaxConcurrent int
	// RetryDelay is the initial backoff between GET retries.
	RetryDelay time.Duration
	Client     *http.Client
	Logger     zerolog.Logger
}

// Transport sends prepared calls to the backend. Connection failures and 5xx
// answers feed a circuit breaker; idempotent GETs are retried on 502/503/504.
// A 401 is never retried here: refreshing is the gateway's job.
type Transport struct {
	base     *url.URL
	client   *http.Client
	breaker  circuitbreaker.CircuitBreaker[*Response]
	retrier  retry.Retry[*Response]
	bulkhead bulkhead.Bulkhead[*Response]
	log      zerolog.Logger
}

func NewTransport(cfg TransportConfig) (*Transport, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = newBackendHTTPClient(timeout)
	}
	concurrent := cfg.MaxConcurrent
	if concurrent <= 0 {
		concurrent = defaultConcurrent
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}

	t := &Transport{
		base:   base,
		client: client,
		log:    cfg.Logger.With().Str("component", "backend").Logger(),
	}

	t.breaker = circuitbreaker.New[*Response](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			metrics.BackendCircuitTransitionsTotal.WithLabelValues(to.String()).Inc()
			t.log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("backend circuit breaker state change")
		},
	})

	t.retrier = retry.New[*Response](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  delay,
		MaxDelay:      2 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})

	t.bulkhead = bulkhead.New[*Response](bulkhead.Config{
		MaxConcurrent: concurrent,
		MaxQueue:      concurrent * 4,
		QueueTimeout:  timeout,
	})

	return t, nil
}

func newBackendHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   32,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Do sends req without credentials. Used for the auth endpoints.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	c, err := req.prepare()
	if err != nil {
		return nil, err
	}
	return t.send(ctx, c, "")
}

// send performs one logical call. Non-2xx answers come back as *APIError.
func (t *Transport) send(ctx context.Context, c *call, bearer string) (*Response, error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(c.method).Observe(time.Since(start).Seconds())
	}()

	// last holds the most recent answer so a 5xx survives however the
	// resilience wrappers report the failure.
	var last *Response
	attempt := func(ctx context.Context) (*Response, error) {
		resp, err := t.roundTrip(ctx, c, bearer)
		if err != nil {
			metrics.BackendRequestsTotal.WithLabelValues(c.method, "error").Inc()
			return nil, err
		}
		metrics.BackendRequestsTotal.WithLabelValues(c.method, strconv.Itoa(resp.StatusCode)).Inc()
		last = resp
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, newAPIError(c.method, c.path, resp.StatusCode, resp.Body)
		}
		return resp, nil
	}

	op := attempt
	if c.method == http.MethodGet {
		op = func(ctx context.Context) (*Response, error) {
			return t.retrier.Do(ctx, attempt)
		}
	}

	resp, err := t.bulkhead.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return t.breaker.Execute(ctx, op)
	})
	if err != nil {
		if last != nil && last.StatusCode >= http.StatusInternalServerError {
			apiErr := newAPIError(c.method, c.path, last.StatusCode, last.Body)
			t.log.Warn().
				Str("method", c.method).
				Str("path", c.path).
				Int("status", last.StatusCode).
				Msg("backend server error")
			return nil, apiErr
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.log.Warn().Err(err).
			Str("method", c.method).
			Str("path", c.path).
			Msg("backend unreachable")
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, c.method, c.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(c.method, c.path, resp.StatusCode, resp.Body)
	}
	return resp, nil
}

func (t *Transport) roundTrip(ctx context.Context, c *call, bearer string) (*Response, error) {
	u := t.base.JoinPath(c.path)
	// JoinPath drops the trailing slash the backend routes require.
	if strings.HasSuffix(c.path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(c.query) > 0 {
		u.RawQuery = c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		body = bytes.NewReader(c.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, c.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// Ping checks that the backend answers at all. Any HTTP status counts as up.
func (t *Transport) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, t.base.String()+"/", nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Method != http.MethodGet {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
