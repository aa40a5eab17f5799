package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per service host, so a slow annotation
// endpoint does not starve calls to another
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	perSec  rate.Limit
	burst   int
}

// NewLimiter creates a limiter allowing requestsPerSecond per host; a
// non-positive burst becomes 5
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		perSec:  rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// Wait blocks until a call to the host of endpoint is allowed or ctx ends
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	host, err := extractHost(endpoint)
	if err != nil {
		return fmt.Errorf("rate limit %s: %w", endpoint, err)
	}
	return l.bucket(host).Wait(ctx)
}

// Allow takes a token for the host of endpoint if one is available
func (l *Limiter) Allow(endpoint string) bool {
	host, err := extractHost(endpoint)
	if err != nil {
		return false
	}
	return l.bucket(host).Allow()
}

func (l *Limiter) bucket(host string) *rate.Limiter {
	l.mu.RLock()
	b, ok := l.buckets[host]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[host]; ok {
		return b
	}
	b = rate.NewLimiter(l.perSec, l.burst)
	l.buckets[host] = b
	return b
}

// extractHost returns the lowercase host[:port] of endpoint
func extractHost(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in %q", endpoint)
	}
	return strings.ToLower(u.Host), nil
}
