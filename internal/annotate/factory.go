package annotate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/wnli/internal/cache"
	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/worker"
)

// NewAnnotator creates the configured backend
func NewAnnotator(cfg model.ServiceConfig) (Annotator, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "http", "spacy":
		return NewHTTPAnnotator(cfg)

	case "openai":
		return NewOpenAIAnnotator(cfg)

	case "file":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("file provider needs service.base_url pointing at an annotations file")
		}
		return LoadFileAnnotator(cfg.BaseURL)

	default:
		return nil, fmt.Errorf("unknown annotation provider: %s (supported: http, openai, file)", cfg.Provider)
	}
}

// FromConfig creates the configured backend wrapped with rate limiting and,
// when enabled, response caching
func FromConfig(cfg *model.Config) (Annotator, error) {
	a, err := NewAnnotator(cfg.Service)
	if err != nil {
		return nil, err
	}

	if key := rateLimitKey(cfg.Service); key != "" && cfg.RateLimiting.RequestsPerSecond > 0 {
		limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		a = WithRateLimit(a, limiter, key)
	}

	if cfg.Cache.Enabled {
		c := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL)
		a = NewCached(a, c, cfg.Cache.DiskTTL)
	}

	return a, nil
}

// rateLimitKey returns the URL whose host the limiter buckets on, or "" for
// local backends
func rateLimitKey(cfg model.ServiceConfig) string {
	switch strings.ToLower(cfg.Provider) {
	case "file":
		return ""
	case "openai":
		if cfg.BaseURL != "" {
			return cfg.BaseURL
		}
		return "https://api.openai.com/v1"
	default:
		if cfg.BaseURL != "" {
			return cfg.BaseURL
		}
		return DefaultServiceURL
	}
}
