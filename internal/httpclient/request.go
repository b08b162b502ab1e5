package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"k8s.io/klog/v2"
)

// Response is a fully-drained HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HttpError is returned for non-2xx responses. It carries the response
// body so callers (family adapters, the orchestrator) can inspect Server
// error payloads for 404/409 state-machine branching without re-issuing
// the request.
type HttpError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("httpclient: %s %s: unexpected status %d: %s", e.Method, e.Path, e.Status, truncate(e.Body, 500))
}

// IsStatus reports whether the error is an HttpError with the given
// status code, the idiom family adapters use to branch on 404/409.
func IsStatus(err error, status int) bool {
	he, ok := err.(*HttpError)
	return ok && he.Status == status
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// request is the one HTTP primitive every family adapter funnels through.
// It acquires the client-wide inflight semaphore for the duration of the
// call, sets the headers spec.md §4.1 mandates (kbn-xsrf always,
// X-Elastic-Internal-Origin when internal is true), retries once on a 5xx
// response or network error, and returns either a drained Response or an
// *HttpError for non-2xx statuses.
func (c *Client) request(ctx context.Context, method, path string, body []byte, internal bool) (*Response, error) {
	return c.requestWithContentType(ctx, method, path, body, "", internal)
}

// requestWithContentType is the general form of request, allowing a
// caller (the saved-objects multipart importer) to override the default
// application/json content type.
func (c *Client) requestWithContentType(ctx context.Context, method, path string, body []byte, contentType string, internal bool) (*Response, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("httpclient: acquire inflight slot: %w", err)
	}
	defer c.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			klog.V(2).Infof("retrying %s %s after: %v", method, path, lastErr)
		}
		resp, err := c.doOnce(ctx, method, path, body, contentType, internal)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	if he, ok := err.(*HttpError); ok {
		return he.Status >= 500
	}
	// Any non-HttpError is a transport-level failure (network error,
	// timeout, connection reset): retryable once.
	return true
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, contentType string, internal bool) (*Response, error) {
	url := c.baseURL.String() + path
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("kbn-xsrf", "true")
	req.Header.Set("Accept", "application/json")
	if internal {
		req.Header.Set("X-Elastic-Internal-Origin", "Kibana")
	}
	c.auth.apply(req)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer httpResp.Body.Close()
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s %s: read body: %w", method, path, err)
	}
	klog.V(3).Infof("%s %s -> %d (%s)", method, path, httpResp.StatusCode, time.Since(start))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &HttpError{Method: method, Path: path, Status: httpResp.StatusCode, Body: data}
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}
