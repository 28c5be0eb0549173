// Package http wraps the network transport for the Stratus API: one
// place that builds requests, applies the retry policy, and classifies
// failures into the pkg/stratus error taxonomy.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fabshop-io/stratus-client/internal/auth"
	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
}

// Response represents an API response with its body fully read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger stratus.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithTimeout bounds each network call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithRetryConfig tunes the retry policy for idempotent GETs.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.waitMin = waitMin
		c.waitMax = waitMax
	}
}

// WithCache routes GET responses through the response cache.
func WithCache(cache *stratus.CacheManager) Option {
	return func(c *Client) { c.cache = cache }
}

// Client executes requests against the Stratus API. GETs go through a
// retrying client; every other verb is attempted exactly once so
// mutations never produce duplicate side effects.
type Client struct {
	baseURL   string
	keys      auth.KeyProvider
	retrying  *retryablehttp.Client
	single    *retryablehttp.Client
	logger    stratus.Logger
	debug     bool
	userAgent string
	timeout   time.Duration
	retryMax  int
	waitMin   time.Duration
	waitMax   time.Duration
	cache     *stratus.CacheManager
}

// NewClient creates a transport client for baseURL. keys may be nil for
// unauthenticated use in tests.
func NewClient(baseURL string, keys auth.KeyProvider, opts ...Option) *Client {
	client := &Client{
		baseURL:   baseURL,
		keys:      keys,
		userAgent: constants.DefaultUserAgent,
		timeout:   constants.DefaultHTTPTimeout,
		retryMax:  constants.DefaultRetryMax,
		waitMin:   constants.DefaultRetryWaitMin,
		waitMax:   constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.retrying = client.newRetryableClient(client.retryMax)
	client.single = client.newRetryableClient(0)

	return client
}

func (c *Client) newRetryableClient(retryMax int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = c.waitMin
	rc.RetryWaitMax = c.waitMax
	rc.Logger = nil
	rc.HTTPClient.Timeout = c.timeout
	rc.CheckRetry = checkRetry
	rc.Backoff = c.backoff
	// Hand back the last response instead of discarding it, so
	// exhausted retries still classify by status.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return rc
}

// checkRetry retries connection failures, rate limiting, and the two
// transient server statuses. Everything else fails immediately.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true, nil
	default:
		return false, nil
	}
}

// backoff computes the wait before a retry. Rate limiting honors the
// server's Retry-After plus a small jitter, uncapped; transient errors
// back off exponentially with the same jitter, capped at waitMax. The
// concrete rate-limit wait is logged so the caller sees what is
// happening.
func (c *Client) backoff(waitMin, waitMax time.Duration, attemptNum int, resp *http.Response) time.Duration {
	jitter := time.Duration(rand.Int64N(int64(constants.RetryJitterMax)))

	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp) + jitter

		if c.logger != nil {
			c.logger.Warn("rate limited, waiting before retry", map[string]interface{}{
				"wait": wait.String(),
				"path": resp.Request.URL.Path,
			})
		}

		return wait
	}

	wait := waitMin*(1<<attemptNum) + jitter
	if wait > waitMax {
		wait = waitMax
	}

	return wait
}

// retryAfter parses the Retry-After header, in seconds.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return constants.DefaultRetryAfter
	}

	return time.Duration(seconds) * time.Second
}

// Do executes a request and returns the classified outcome.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	cacheKey := ""
	if c.cache != nil && req.Method == http.MethodGet {
		cacheKey = c.cache.GetCacheKey(req.Method, req.Path, flattenQuery(req.Query))

		if body, ok := c.cache.Get(ctx, cacheKey); ok {
			return &Response{StatusCode: http.StatusOK, Body: body}, nil
		}
	}

	var rawBody []byte

	if req.Body != nil {
		var err error

		rawBody, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if rawBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	err = c.applyCommonHeaders(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})
	}

	resp, err := c.clientFor(req.Method).Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stratus.ErrConnectionFailed, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		})
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return response, classifyStatus(resp, body)
	}

	if cacheKey != "" {
		c.cache.Set(ctx, cacheKey, body)
	}

	if c.cache != nil && req.Method != http.MethodGet {
		// A follow-up list must never serve pre-mutation state.
		c.cache.Invalidate(ctx)
	}

	return response, nil
}

func (c *Client) clientFor(method string) *retryablehttp.Client {
	if method == http.MethodGet {
		return c.retrying
	}

	return c.single
}

func (c *Client) applyCommonHeaders(ctx context.Context, httpReq *retryablehttp.Request) error {
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if c.keys != nil {
		key, err := c.keys.AppKey(ctx)
		if err != nil {
			return err
		}

		httpReq.Header.Set(constants.AppKeyHeader, key)
	}

	return nil
}

// classifyStatus maps a non-2xx response onto the error taxonomy.
func classifyStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &stratus.RateLimitError{RetryAfter: retryAfter(resp)}
	}

	return &stratus.APIError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

func flattenQuery(query url.Values) map[string]string {
	if len(query) == 0 {
		return nil
	}

	params := make(map[string]string, len(query))
	for key := range query {
		params[key] = query.Get(key)
	}

	return params
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body. Never retried.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request. Never retried.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// PostMultipart uploads one file as a multipart form POST. Attempted
// exactly once.
func (c *Client) PostMultipart(ctx context.Context, path, fieldName, fileName string, content io.Reader) (*Response, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, fmt.Errorf("building multipart form: %w", err)
	}

	_, err = io.Copy(part, content)
	if err != nil {
		return nil, fmt.Errorf("reading upload content: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("finalizing multipart form: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	err = c.applyCommonHeaders(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	resp, err := c.single.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stratus.ErrConnectionFailed, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return response, classifyStatus(resp, body)
	}

	if c.cache != nil {
		c.cache.Invalidate(ctx)
	}

	return response, nil
}

// GetStream performs a GET and hands the body back unread, for
// downloads that stream to disk. The caller closes the reader. Not
// retried: a broken stream is reported, not silently restarted.
func (c *Client) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	err = c.applyCommonHeaders(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	resp, err := c.single.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stratus.ErrConnectionFailed, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		return nil, classifyStatus(resp, body)
	}

	return resp.Body, nil
}
