package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig(t.TempDir(), time.Hour)
	cfg.InitialInterval = time.Millisecond
	cfg.MaxInterval = 5 * time.Millisecond
	cfg.MinHostInterval = 0
	return cfg
}

func TestGetCachesResponses(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("schedule page"))
	}))
	defer srv.Close()

	f, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		resp, err := f.Get(context.Background(), srv.URL, nil, nil)
		if err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
		if string(resp.Body) != "schedule page" {
			t.Errorf("unexpected body: %q", resp.Body)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 server hit with warm cache, got %d", got)
	}
}

func TestGetCacheKeyedByParams(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(r.URL.RawQuery))
	}))
	defer srv.Close()

	f, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	lec := url.Values{"leagues": []string{"lec"}}
	lck := url.Values{"leagues": []string{"lck"}}

	r1, err := f.Get(context.Background(), srv.URL, lec, nil)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := f.Get(context.Background(), srv.URL, lck, nil)
	if err != nil {
		t.Fatal(err)
	}

	if string(r1.Body) == string(r2.Body) {
		t.Error("different params should not share a cache entry")
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("expected 2 server hits, got %d", got)
	}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok eventually"))
	}))
	defer srv.Close()

	f, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := f.Get(context.Background(), srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("expected retries to succeed: %v", err)
	}
	if string(resp.Body) != "ok eventually" {
		t.Errorf("unexpected body: %q", resp.Body)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.MaxAttempts = 3
	f, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.Get(context.Background(), srv.URL, nil, nil); err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Get(context.Background(), srv.URL, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected immediate 404 failure, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("404 should not be retried, got %d attempts", got)
	}
}

func TestGetHonorsRetryAfter(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	started := time.Now()
	if _, err := f.Get(context.Background(), srv.URL, nil, nil); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(started); elapsed < time.Second {
		t.Errorf("expected at least 1s wait for Retry-After, waited %v", elapsed)
	}
}

func TestCacheKeyStable(t *testing.T) {
	params := url.Values{"leagues": []string{"lec", "lck"}}
	headers := map[string]string{"X-Api-Key": "k"}

	k1 := cacheKey("https://example.com/schedule", params, headers)
	k2 := cacheKey("https://example.com/schedule", params, headers)
	if k1 != k2 {
		t.Error("cache key not deterministic")
	}
	if k1 == cacheKey("https://example.com/other", params, headers) {
		t.Error("different URLs should produce different keys")
	}
	if k1 == cacheKey("https://example.com/schedule", nil, headers) {
		t.Error("different params should produce different keys")
	}
}
