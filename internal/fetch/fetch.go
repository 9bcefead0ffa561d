package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// DefaultUserAgent mimics a browser; the schedule site serves the full
// server-rendered page only to browser-like clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36 lolesports-ical/0.1"

// Config controls caching, rate limiting, and retry behavior.
type Config struct {
	CacheDir        string
	CacheTTL        time.Duration
	Timeout         time.Duration
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MinHostInterval time.Duration
	UserAgent       string
}

// DefaultConfig returns the production defaults.
func DefaultConfig(cacheDir string, ttl time.Duration) Config {
	return Config{
		CacheDir:        cacheDir,
		CacheTTL:        ttl,
		Timeout:         20 * time.Second,
		MaxAttempts:     5,
		InitialInterval: 800 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MinHostInterval: time.Second,
		UserAgent:       DefaultUserAgent,
	}
}

// Response is a completed HTTP response, possibly served from cache.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Fetcher performs cached, rate-limited, retrying GET requests.
type Fetcher struct {
	cfg    Config
	client *http.Client
	log    *logrus.Entry

	mu         sync.Mutex
	lastByHost map[string]time.Time
}

// New creates a Fetcher, creating the cache directory if needed.
func New(cfg Config) (*Fetcher, error) {
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	return &Fetcher{
		cfg:        cfg,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        logrus.WithField("component", "fetch"),
		lastByHost: make(map[string]time.Time),
	}, nil
}

// Get fetches a URL, consulting the disk cache first. Transient failures
// (connection errors, 429, 5xx) are retried with exponential backoff and
// jitter up to the configured attempt count; other non-2xx statuses fail
// immediately. Successful responses are written back to the cache.
func (f *Fetcher) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (*Response, error) {
	key := cacheKey(rawURL, params, headers)
	if resp := f.cacheGet(key); resp != nil {
		f.log.WithField("url", rawURL).Debug("cache hit")
		return resp, nil
	}

	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}
	parsed, err := url.Parse(reqURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	host := parsed.Host

	attempts := f.cfg.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = f.cfg.InitialInterval
	expo.MaxInterval = f.cfg.MaxInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, attempts-1), ctx)

	var resp *Response
	err = backoff.Retry(func() error {
		f.waitForHost(host)

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if reqErr != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", reqErr))
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		httpResp, doErr := f.client.Do(req)
		if doErr != nil {
			f.log.WithError(doErr).WithField("url", reqURL).Debug("request failed, retrying")
			return doErr
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
			// Honor a numeric Retry-After on top of the backoff schedule.
			if after := httpResp.Header.Get("Retry-After"); after != "" {
				if secs, parseErr := strconv.Atoi(after); parseErr == nil && secs > 0 {
					select {
					case <-time.After(time.Duration(secs) * time.Second):
					case <-ctx.Done():
						return backoff.Permanent(ctx.Err())
					}
				}
			}
			return fmt.Errorf("transient status %d for %s", httpResp.StatusCode, reqURL)
		}
		if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
			return backoff.Permanent(fmt.Errorf("unexpected status %d for %s", httpResp.StatusCode, reqURL))
		}

		body, readErr := io.ReadAll(httpResp.Body)
		if readErr != nil {
			return readErr
		}
		resp = &Response{Status: httpResp.StatusCode, Header: httpResp.Header.Clone(), Body: body}
		return nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}

	f.cacheSet(key, resp)
	return resp, nil
}

// waitForHost enforces a minimum interval between requests to the same host.
func (f *Fetcher) waitForHost(host string) {
	if f.cfg.MinHostInterval <= 0 {
		return
	}
	f.mu.Lock()
	last, seen := f.lastByHost[host]
	now := time.Now()
	var wait time.Duration
	if seen {
		if delta := now.Sub(last); delta < f.cfg.MinHostInterval {
			wait = f.cfg.MinHostInterval - delta
		}
	}
	f.lastByHost[host] = now.Add(wait)
	f.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}

type cacheEntry struct {
	Version  int                 `json:"v"`
	CachedAt time.Time           `json:"ts"`
	Status   int                 `json:"status"`
	Header   map[string][]string `json:"headers"`
	Body     []byte              `json:"body"`
}

const cacheVersion = 2

// cacheKey digests the full request shape so distinct params or headers
// never share an entry.
func cacheKey(rawURL string, params url.Values, headers map[string]string) string {
	type kv struct {
		K string `json:"k"`
		V string `json:"v"`
	}
	var paramList []kv
	for k, vs := range params {
		for _, v := range vs {
			paramList = append(paramList, kv{k, v})
		}
	}
	sort.Slice(paramList, func(i, j int) bool {
		if paramList[i].K != paramList[j].K {
			return paramList[i].K < paramList[j].K
		}
		return paramList[i].V < paramList[j].V
	})
	var headerList []kv
	for k, v := range headers {
		headerList = append(headerList, kv{k, v})
	}
	sort.Slice(headerList, func(i, j int) bool { return headerList[i].K < headerList[j].K })

	raw, _ := json.Marshal(struct {
		URL     string `json:"url"`
		Params  []kv   `json:"params"`
		Headers []kv   `json:"headers"`
	}{rawURL, paramList, headerList})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (f *Fetcher) cachePath(key string) string {
	return filepath.Join(f.cfg.CacheDir, key+".json")
}

// cacheGet returns a cached response, or nil on miss, expiry, or any read
// problem. Cache damage is never an error, just a miss.
func (f *Fetcher) cacheGet(key string) *Response {
	if f.cfg.CacheDir == "" {
		return nil
	}
	data, err := os.ReadFile(f.cachePath(key))
	if err != nil {
		return nil
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	if entry.Version != cacheVersion {
		return nil
	}
	if time.Since(entry.CachedAt) > f.cfg.CacheTTL {
		return nil
	}
	return &Response{Status: entry.Status, Header: http.Header(entry.Header), Body: entry.Body}
}

// cacheSet writes a response to the cache. Failures are logged and ignored:
// the response is already in hand.
func (f *Fetcher) cacheSet(key string, resp *Response) {
	if f.cfg.CacheDir == "" {
		return
	}
	entry := cacheEntry{
		Version:  cacheVersion,
		CachedAt: time.Now(),
		Status:   resp.Status,
		Header:   resp.Header,
		Body:     resp.Body,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.WriteFile(f.cachePath(key), data, 0644); err != nil {
		f.log.WithError(err).Warn("cache write failed")
	}
}
