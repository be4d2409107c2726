// Package ratelimit throttles page navigations per host.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter gates navigations to a URL's host.
type RateLimiter interface {
	// Wait blocks until a navigation to urlStr may start, or ctx is done.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a navigation may start right now, consuming a token if so.
	Allow(urlStr string) bool
}

// DomainLimiter keeps one token bucket per host. Concurrent jobs against the
// same shop share a bucket, so a batch does not open every page at once.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond navigations per host.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until a navigation to urlStr may proceed.
// URLs without a host are not throttled; navigation will fail on its own.
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	host := HostKey(urlStr)
	if host == "" {
		return nil
	}
	return dl.getLimiter(host).Wait(ctx)
}

// Allow checks if a request can proceed immediately without blocking
func (dl *DomainLimiter) Allow(urlStr string) bool {
	host := HostKey(urlStr)
	if host == "" {
		return true
	}
	return dl.getLimiter(host).Allow()
}

// SetLimit overrides the rate for one host, e.g. a stricter budget for a CDN.
func (dl *DomainLimiter) SetLimit(host string, requestsPerSecond float64, burst int) {
	host = normalizeHost(host)

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, exists := dl.limiters[host]; exists {
		limiter.SetLimit(rate.Limit(requestsPerSecond))
		limiter.SetBurst(burst)
		return
	}
	dl.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// getLimiter returns or creates a rate limiter for the given host
func (dl *DomainLimiter) getLimiter(host string) *rate.Limiter {
	dl.mu.RLock()
	limiter, exists := dl.limiters[host]
	dl.mu.RUnlock()

	if exists {
		return limiter
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := dl.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = limiter
	return limiter
}

// HostKey returns the bucket key for urlStr: the lowercased host with any
// "www." prefix and port removed. It returns "" for unparsable URLs.
func HostKey(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return normalizeHost(u.Hostname())
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
