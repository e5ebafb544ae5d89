package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func initTestEngine(t *testing.T, client *http.Client) {
	t.Helper()
	prev := cfg
	c := DefaultConfig()
	c.HTTPClient = client
	c.RateLimit = 0
	Init(c)
	t.Cleanup(func() { Init(prev) })
}

func TestGetUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			http.Error(w, "missing header", http.StatusBadRequest)
			return
		}
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "missing UA", http.StatusBadRequest)
			return
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	before := GetMetrics()["upstream_requests"]
	body, err := GetUpstream(context.Background(), srv.URL, http.Header{"X-Test": {"1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want %q", body, "hello")
	}
	if got := GetMetrics()["upstream_requests"]; got != before+1 {
		t.Errorf("upstream_requests = %d, want %d", got, before+1)
	}
}

func TestGetUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such video", http.StatusNotFound)
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	_, err := GetUpstream(context.Background(), srv.URL, nil)
	var se *HTTPStatusError
	if !errors.As(err, &se) {
		t.Fatalf("want *HTTPStatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", se.StatusCode)
	}
}

func TestDoUpstreamHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := GetUpstream(ctx, srv.URL, nil); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
