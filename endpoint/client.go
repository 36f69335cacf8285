// Package endpoint provides a SPARQL 1.1 protocol client for the Ontop
// endpoint behind the portal, with retry, cache header reporting and a probe
// comparing direct and cached access.
//
// The client does not cache, paginate or authenticate. It sends queries as
// given and reports what came back.
package endpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c360studio/belhisfirm/metric"
	"github.com/c360studio/belhisfirm/queries"
	"github.com/c360studio/belhisfirm/sparql"
	"github.com/c360studio/semstreams/pkg/retry"
	"github.com/google/uuid"
)

// maxResponseSize limits the response body read into memory.
const maxResponseSize = 32 * 1024 * 1024 // 32MB

// Content types of the SPARQL protocol.
const (
	ContentTypeResultsJSON = "application/sparql-results+json"
	ContentTypeForm        = "application/x-www-form-urlencoded"
)

// adhocLabel is the template label of queries not rendered from the registry.
const adhocLabel = "adhoc"

// Client sends SELECT queries to one SPARQL endpoint. It is safe for
// concurrent use.
type Client struct {
	url         string
	method      string
	httpClient  *http.Client
	retryConfig retry.Config
	logger      *slog.Logger
	metrics     *metric.Metrics
}

// Response is the result of one Select.
type Response struct {
	// RequestID is sent as X-Request-ID and logged.
	RequestID  string
	Results    *sparql.Results
	Cache      CacheInfo
	StatusCode int
	Duration   time.Duration
	Attempts   int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration. A request is always tried
// at least once.
func WithRetryConfig(cfg retry.Config) ClientOption {
	return func(client *Client) {
		if cfg.MaxAttempts < 1 {
			cfg.MaxAttempts = 1
		}
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithMetrics records query metrics.
func WithMetrics(m *metric.Metrics) ClientOption {
	return func(client *Client) {
		client.metrics = m
	}
}

// WithMethod selects POST (form-encoded, the default) or GET.
func WithMethod(method string) ClientOption {
	return func(client *Client) {
		client.method = strings.ToUpper(method)
	}
}

// NewClient creates a client for the endpoint at endpointURL.
func NewClient(endpointURL string, opts ...ClientOption) *Client {
	c := &Client{
		url:         endpointURL,
		method:      http.MethodPost,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the endpoint URL.
func (c *Client) URL() string { return c.url }

// Select sends a query and decodes the JSON results.
func (c *Client) Select(ctx context.Context, query string) (*Response, error) {
	return c.SelectNamed(ctx, adhocLabel, query)
}

// SelectNamed is Select with a template name used for logs and metrics.
// Transient failures are retried with backoff.
func (c *Client) SelectNamed(ctx context.Context, name, query string) (*Response, error) {
	return c.selectWith(ctx, c.retryConfig, name, query)
}

func (c *Client) selectWith(ctx context.Context, cfg retry.Config, name, query string) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, NewFatalError(fmt.Errorf("query is required"))
	}
	if c.method != http.MethodPost && c.method != http.MethodGet {
		return nil, NewFatalError(fmt.Errorf("unsupported method %q", c.method))
	}

	requestID := uuid.New().String()
	startedAt := time.Now()

	attempt := 0
	resp, err := retry.DoWithResult(ctx, cfg, func() (*Response, error) {
		attempt++
		if attempt > 1 {
			c.metrics.RecordRetry(name)
			c.logger.Debug("Retrying SPARQL request",
				"template", name,
				"request_id", requestID,
				"attempt", attempt,
				"max_attempts", cfg.MaxAttempts)
		}
		resp, err := c.doRequest(ctx, requestID, query)
		if err != nil {
			c.logger.Debug("SPARQL request failed",
				"template", name,
				"request_id", requestID,
				"attempt", attempt,
				"error", err)
			return nil, markNonRetryable(err)
		}
		return resp, nil
	})
	if err != nil {
		err = unwrapNonRetryable(err)
		c.metrics.RecordQuery(name, metric.StatusError, time.Since(startedAt))
		c.logger.Warn("SPARQL query failed",
			"template", name,
			"request_id", requestID,
			"attempts", attempt,
			"error", err)
		return nil, fmt.Errorf("query %s: %w", name, err)
	}

	resp.Attempts = attempt
	resp.Duration = time.Since(startedAt)
	rows := len(resp.Results.Rows())
	c.metrics.RecordQuery(name, metric.StatusOK, resp.Duration)
	c.metrics.RecordRows(name, rows)
	c.metrics.RecordCache(resp.Cache.Status)
	c.logger.Debug("SPARQL query completed",
		"template", name,
		"request_id", requestID,
		"rows", rows,
		"cache", resp.Cache.Status,
		"duration", resp.Duration)
	return resp, nil
}

// Run renders a registry template with bindings and selects it.
func (c *Client) Run(ctx context.Context, reg *queries.Registry, name string, b sparql.Bindings) (*Response, error) {
	text, err := reg.Render(name, b)
	if err != nil {
		status := metric.StatusError
		if errors.Is(err, queries.ErrNotFound) {
			status = metric.StatusNotFound
		}
		c.metrics.RecordQuery(name, status, 0)
		return nil, err
	}
	return c.SelectNamed(ctx, name, text)
}

// doRequest executes a single HTTP request.
func (c *Client) doRequest(ctx context.Context, requestID, query string) (*Response, error) {
	form := url.Values{"query": {query}}

	var req *http.Request
	var err error
	if c.method == http.MethodGet {
		target := c.url
		if strings.Contains(target, "?") {
			target += "&" + form.Encode()
		} else {
			target += "?" + form.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", ContentTypeForm)
		}
	}
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	req.Header.Set("Accept", ContentTypeResultsJSON)
	req.Header.Set("X-Request-ID", requestID)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewFatalError(ctx.Err())
		}
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, classifyHTTPError(httpResp.StatusCode, body)
	}

	results, err := sparql.DecodeResults(bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(err)
	}

	return &Response{
		RequestID:  requestID,
		Results:    results,
		Cache:      cacheInfo(httpResp.Header),
		StatusCode: httpResp.StatusCode,
	}, nil
}

// Ping checks that the endpoint answers HTTP at all. Any status below 500
// counts as reachable, as Ontop answers a bare GET with 400.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Since(start), NewTransientError(fmt.Errorf("endpoint %s not reachable: %w", c.url, err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	if resp.StatusCode >= 500 {
		return time.Since(start), classifyHTTPError(resp.StatusCode, nil)
	}
	return time.Since(start), nil
}

// Purge asks the caching proxy to invalidate its entries with the PURGE
// method.
func (c *Client) Purge(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "PURGE", c.url, nil)
	if err != nil {
		return NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewTransientError(fmt.Errorf("purge %s: %w", c.url, err))
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return classifyHTTPError(resp.StatusCode, body)
	}
	c.logger.Info("Cache purged", "url", c.url)
	return nil
}
