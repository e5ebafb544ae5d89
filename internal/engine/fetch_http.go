package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxUpstreamBody caps how much of any platform response is read.
const MaxUpstreamBody = 8 * 1024 * 1024

// HTTPStatusError is returned for non-2xx platform responses.
type HTTPStatusError struct {
	StatusCode int
	Snippet    string
}

func (e *HTTPStatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Snippet)
}

// DoUpstream sends one platform request built by newReq and returns the body.
// It waits on the shared upstream limiter and counts the request in metrics.
func DoUpstream(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if err := waitLimiter(ctx); err != nil {
		return nil, err
	}
	metrics.UpstreamRequests.Add(1)

	resp, err := RetryHTTP(ctx, SingleAttempt, func() (*http.Response, error) {
		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		metrics.UpstreamErrors.Add(1)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamErrors.Add(1)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Snippet: string(snippet)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxUpstreamBody))
	if err != nil {
		metrics.UpstreamErrors.Add(1)
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// GetUpstream is DoUpstream for a plain GET with browser-like headers.
func GetUpstream(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	return DoUpstream(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return req, nil
	})
}
