// Package proxy rotates browser sessions across upstream proxies.
package proxy

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultCooldown is how long a proxy is benched after a failed session.
const DefaultCooldown = 5 * time.Minute

// Pool hands out proxies round-robin, skipping ones that failed recently.
// A nil *Pool is valid and always yields "" (direct connection).
type Pool struct {
	proxies  []string
	index    int
	cooldown time.Duration
	failed   map[string]time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// New builds a Pool from proxy URLs such as "http://host:3128" or
// "socks5://host:1080". Duplicates are dropped; a bare "host:port" gets http://.
func New(proxies []string, cooldown time.Duration) (*Pool, error) {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	seen := make(map[string]bool, len(proxies))
	var list []string
	for _, raw := range proxies {
		p, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		list = append(list, p)
	}
	return &Pool{
		proxies:  list,
		cooldown: cooldown,
		failed:   make(map[string]time.Time),
		now:      time.Now,
	}, nil
}

// Normalize validates a proxy address and fills in the http scheme when missing.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid proxy %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks4", "socks5":
	default:
		return "", fmt.Errorf("invalid proxy %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid proxy %q: missing host", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// Len reports how many distinct proxies the pool rotates through.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// Next returns the next proxy not in cooldown. When every proxy is benched it
// returns the one that failed longest ago rather than nothing.
func (p *Pool) Next() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	now := p.now()
	oldest, oldestAt := "", time.Time{}
	for range p.proxies {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failedAt, benched := p.failed[proxy]
		if !benched {
			return proxy
		}
		if now.Sub(failedAt) >= p.cooldown {
			delete(p.failed, proxy)
			return proxy
		}
		if oldest == "" || failedAt.Before(oldestAt) {
			oldest, oldestAt = proxy, failedAt
		}
	}
	return oldest
}

// MarkFailed benches proxy for the cooldown period.
func (p *Pool) MarkFailed(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
