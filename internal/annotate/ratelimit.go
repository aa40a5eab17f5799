package annotate

import (
	"context"

	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/worker"
)

// RateLimited waits on a per-host limiter before every call
type RateLimited struct {
	next    Annotator
	limiter *worker.Limiter
	url     string
}

// WithRateLimit wraps next so calls are throttled on the host of url
func WithRateLimit(next Annotator, limiter *worker.Limiter, url string) *RateLimited {
	return &RateLimited{next: next, limiter: limiter, url: url}
}

// Name returns the wrapped backend's name
func (r *RateLimited) Name() string {
	return r.next.Name()
}

// Parse waits for clearance, then parses
func (r *RateLimited) Parse(ctx context.Context, sentence string) ([]model.Token, error) {
	if err := r.limiter.Wait(ctx, r.url); err != nil {
		return nil, err
	}
	return r.next.Parse(ctx, sentence)
}

// Resolve waits for clearance, then resolves
func (r *RateLimited) Resolve(ctx context.Context, document string) (*model.Document, error) {
	if err := r.limiter.Wait(ctx, r.url); err != nil {
		return nil, err
	}
	return r.next.Resolve(ctx, document)
}

// Unwrap returns the wrapped backend
func (r *RateLimited) Unwrap() Annotator {
	return r.next
}
