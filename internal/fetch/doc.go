// Package fetch provides the HTTP layer for scraping: a client with a
// TTL-based disk cache keyed by request shape, per-host rate limiting, and
// retry with exponential backoff on transient failures (connection errors,
// 429, 5xx), honoring Retry-After when the server sends one.
package fetch
