// Package client is a Go client for the docnav HTTP API.
//
//	c, err := client.New("http://localhost:8080", client.WithAPIKey(key))
//	resp, err := c.Query(ctx, client.QueryRequest{Query: "How do I enable MIG?"})
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults for New.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultRetryCount   = 3
	DefaultRetryWait    = 200 * time.Millisecond
	DefaultRetryMaxWait = 2 * time.Second
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docnav: %s: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type options struct {
	apiKey       string
	timeout      time.Duration
	retryCount   int
	retryWait    time.Duration
	retryMaxWait time.Duration
	httpClient   *http.Client
	debug        bool
}

// Option configures a Client.
type Option func(*options)

// WithAPIKey sends the key as a Bearer token.
func WithAPIKey(key string) Option { return func(o *options) { o.apiKey = key } }

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// WithRetry configures retries on network errors, 429 and 5xx. count 0 disables retries.
func WithRetry(count int, wait, maxWait time.Duration) Option {
	return func(o *options) {
		o.retryCount = count
		o.retryWait = wait
		o.retryMaxWait = maxWait
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

// WithDebug logs requests and responses through resty.
func WithDebug(on bool) Option { return func(o *options) { o.debug = on } }

// Client talks to a docnav server. Safe for concurrent use.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) URL, got %q", baseURL)
	}

	o := options{
		timeout:      DefaultTimeout,
		retryCount:   DefaultRetryCount,
		retryWait:    DefaultRetryWait,
		retryMaxWait: DefaultRetryMaxWait,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(o.retryCount).
		SetRetryWaitTime(o.retryWait).
		SetRetryMaxWaitTime(o.retryMaxWait).
		SetDebug(o.debug)
	if o.apiKey != "" {
		rc.SetAuthToken(o.apiKey)
	}
	rc.AddRetryCondition(retryCondition)

	return &Client{http: rc}, nil
}

// retryCondition retries transient failures. A degraded /health is an answer, not a failure.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	if r.Request != nil && r.Request.RawRequest != nil && r.Request.RawRequest.URL.Path == "/health" {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// Query asks a question.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/query", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search asks a question through the GET endpoint. nResults <= 0 and a nil
// includeCode use server defaults.
func (c *Client) Search(ctx context.Context, q string, nResults int, includeCode *bool) (*QueryResponse, error) {
	params := url.Values{"q": {q}}
	if nResults > 0 {
		params.Set("n_results", strconv.Itoa(nResults))
	}
	if includeCode != nil {
		params.Set("include_code_examples", strconv.FormatBool(*includeCode))
	}

	var out QueryResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/search", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ingest adds documents to the knowledge base. The server clears its result cache.
func (c *Client) Ingest(ctx context.Context, docs []Document) (*IngestResponse, error) {
	var out IngestResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/ingest", ingestRequest{Documents: docs}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns knowledge base statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CacheStats returns result cache statistics.
func (c *Client) CacheStats(ctx context.Context) (*CacheStats, error) {
	var out CacheStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/cache/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearCache drops every cached answer and returns how many were removed.
func (c *Client) ClearCache(ctx context.Context) (int, error) {
	var out cacheClearResponse
	if err := c.do(ctx, http.MethodDelete, "/api/v1/cache", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Cleared, nil
}

// SafetyStatus returns the active safety policy.
func (c *Client) SafetyStatus(ctx context.Context) (*SafetyStatus, error) {
	var out SafetyStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/safety/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the health report. A degraded service (503) is returned
// without error; check Health.Status.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/health")
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusServiceUnavailable {
		return nil, &APIError{StatusCode: resp.StatusCode(), Code: "unexpected_status", Message: resp.String()}
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, params url.Values, result any) error {
	req := c.http.R().
		SetContext(ctx).
		SetError(&APIError{})
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return nil
	}

	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	return &APIError{StatusCode: resp.StatusCode(), Code: "unexpected_status", Message: resp.String()}
}
