package engine

import (
	"context"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth helpers for engine consumers.

// SingleAttempt performs exactly one request. RetryHTTP still maps 429/5xx
// to errors, which is all the platform calls need: the only retry they get
// is the embed-URL fallback.
var SingleAttempt = func() stealth.RetryConfig {
	rc := stealth.DefaultRetryConfig
	rc.MaxRetries = 0
	return rc
}()

func RandomUserAgent() string { return stealth.RandomUserAgent() }

func RetryHTTP(ctx context.Context, rc stealth.RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return stealth.RetryHTTP(ctx, rc, fn)
}
