// Package apiclient is the single chokepoint for every call to the
// document-management REST API: it attaches the bearer token, serializes
// payloads and normalizes failures into typed errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirius-dms/dms-client/internal/credential"
	"github.com/sirius-dms/dms-client/internal/logging"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of an error response is read for the message.
const maxErrorBody = 64 * 1024

// Config configures a Client.
type Config struct {
	// BaseURL is the API root every path is relative to,
	// e.g. "https://dms.example.com/api/v1".
	BaseURL string

	// Timeout bounds buffered requests. Streams are bounded by their context only.
	// Default: 30 seconds
	Timeout time.Duration

	// CacheTTL enables caching of GET responses. 0 disables the cache.
	CacheTTL time.Duration

	// Transport overrides the HTTP transport (tests, proxies).
	Transport http.RoundTripper

	// UserAgent is sent with every request.
	UserAgent string
}

// RequestOptions are the per-call parts of a request descriptor.
// A nil *RequestOptions is the same as the zero value.
type RequestOptions struct {
	// Params are appended to the query string; nil values are dropped.
	Params Params

	// SkipAuth suppresses the Authorization header even when a token is stored.
	SkipAuth bool
}

// Blob is a downloaded binary body.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Client talks to the REST API. Safe for concurrent use.
type Client struct {
	baseURL      string
	userAgent    string
	httpClient   *http.Client
	streamClient *http.Client
	store        credential.Store
	cache        *responseCache
	logger       *zap.Logger
}

// New creates a Client. store supplies the bearer token for each request;
// it is read on every call and never written by the client.
func New(cfg Config, store credential.Store, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must use http or https scheme, got: %q", u.Scheme)
	}
	if store == nil {
		store = credential.NewMemoryStore()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "dms-client"
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:    cfg.UserAgent,
		httpClient:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		streamClient: &http.Client{Transport: transport},
		store:        store,
		cache:        newResponseCache(cfg.CacheTTL),
		logger:       logging.OrNop(logger),
	}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials returns the store the client reads its token from.
func (c *Client) Credentials() credential.Store {
	return c.store
}

// Get issues a GET and decodes the JSON response into out (if non-nil).
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, opts, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts *RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, opts, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts *RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, opts, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, opts, out)
}

// Download fetches a binary body.
func (c *Client) Download(ctx context.Context, path string, opts *RequestOptions) (*Blob, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, opts, nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	data, resp, err := c.send(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	blob := &Blob{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		blob.Filename = params["filename"]
	}
	return blob, nil
}

// Stream issues a request and returns the live response for incremental
// reading. A non-2xx status is reported as *StreamProtocolError before any
// body is handed out. The caller must close the returned body.
func (c *Client) Stream(ctx context.Context, method, path string, body any, opts *RequestOptions) (*http.Response, error) {
	if method != http.MethodGet {
		c.cache.flush()
	}

	payload, contentType, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, method, path, opts, payload, contentType)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, req, err)
	}
	c.logResponse(req, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StreamProtocolError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(raw, resp),
		}
	}

	decoded, err := decodeBody(resp)
	if err != nil {
		resp.Body.Close()
		return nil, &StreamProtocolError{StatusCode: resp.StatusCode, Message: err.Error()}
	}
	resp.Body = decoded
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, opts *RequestOptions, out any) error {
	if method != http.MethodGet {
		c.cache.flush()
	}

	payload, contentType, err := encodeJSON(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, opts, payload, contentType)
	if err != nil {
		return err
	}

	var key string
	if method == http.MethodGet && c.cache != nil {
		key = cacheKey(req.URL.String(), req.Header.Get("Authorization"))
		if data, ok := c.cache.get(key); ok {
			c.logger.Debug("api cache hit", zap.String("url", req.URL.Path))
			return decodeInto(data, http.StatusOK, out)
		}
	}

	data, resp, err := c.send(c.httpClient, req)
	if err != nil {
		return err
	}
	if key != "" {
		c.cache.set(key, data)
	}
	return decodeInto(data, resp.StatusCode, out)
}

func (c *Client) doMultipart(ctx context.Context, path string, payload []byte, contentType string, out any) error {
	c.cache.flush()

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, payload, contentType)
	if err != nil {
		return err
	}
	data, resp, err := c.send(c.httpClient, req)
	if err != nil {
		return err
	}
	return decodeInto(data, resp.StatusCode, out)
}

// newRequest creates a new HTTP request with authentication
func (c *Client) newRequest(ctx context.Context, method, path string, opts *RequestOptions, body []byte, contentType string) (*http.Request, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	endpoint, err := c.buildURL(path, opts.Params)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// A missing token is not an error here: the server decides authorization.
	if !opts.SkipAuth {
		token, err := c.store.Token(ctx)
		if err != nil {
			c.logger.Warn("failed to read stored credential", zap.Error(err))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// buildURL constructs a URL with query parameters
func (c *Client) buildURL(path string, params Params) (string, error) {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}

	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params.Values() {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// send executes req and returns the fully read, decoded body of a 2xx response.
func (c *Client) send(hc *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, nil, c.transportError(req.Context(), req, err)
	}
	defer resp.Body.Close()
	c.logResponse(req, resp.StatusCode, time.Since(start))

	body, decodeErr := decodeBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// An undecodable error body still yields the status text.
		var raw []byte
		if decodeErr == nil {
			raw, _ = io.ReadAll(io.LimitReader(body, maxErrorBody))
		}
		return nil, resp, &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(raw, resp),
		}
	}
	if decodeErr != nil {
		return nil, resp, &DecodeError{StatusCode: resp.StatusCode, Err: decodeErr}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		if cerr := Cancelled(req.Context()); cerr != nil {
			return nil, resp, cerr
		}
		return nil, resp, &NetworkError{Method: req.Method, Path: req.URL.Path, Err: err}
	}
	return data, resp, nil
}

func (c *Client) transportError(ctx context.Context, req *http.Request, err error) error {
	if cerr := Cancelled(ctx); cerr != nil {
		c.logger.Debug("api request cancelled",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path))
		return cerr
	}
	c.logger.Warn("api request failed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(err))
	return &NetworkError{Method: req.Method, Path: req.URL.Path, Err: err}
}

func (c *Client) logResponse(req *http.Request, status int, elapsed time.Duration) {
	c.logger.Debug("api request",
		zap.String("request_id", req.Header.Get("X-Request-ID")),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
		zap.Bool("authenticated", req.Header.Get("Authorization") != ""))
}

func encodeJSON(body any) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, "application/json", nil
}

func decodeInto(data []byte, status int, out any) error {
	if out == nil || status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{StatusCode: status, Err: err}
	}
	return nil
}

// extractMessage pulls a human-readable message out of an error body.
// FastAPI puts it in "detail" (a string, or a list of validation errors);
// other services use "message" or "error". Falls back to the status text.
func extractMessage(raw []byte, resp *http.Response) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			field, ok := body[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(field, &s); err == nil && s != "" {
				return s
			}
			var list []struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(field, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
				return list[0].Msg
			}
		}
	}

	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
