package annotate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/wnli/internal/cache"
	"github.com/ppiankov/wnli/internal/model"
)

// Cached memoizes an annotator's responses by backend and text
type Cached struct {
	next  Annotator
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps next with c
func NewCached(next Annotator, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl}
}

// Name returns the wrapped backend's name
func (c *Cached) Name() string {
	return c.next.Name()
}

// Parse returns a cached parse or asks the wrapped backend
func (c *Cached) Parse(ctx context.Context, sentence string) ([]model.Token, error) {
	key := cache.Key("parse", c.next.Name(), sentence)

	if data, ok := c.cache.Get(key); ok {
		var tokens []model.Token
		if err := json.Unmarshal(data, &tokens); err == nil {
			return tokens, nil
		}
	}

	tokens, err := c.next.Parse(ctx, sentence)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tokens); err == nil {
		_ = c.cache.Set(key, data, c.ttl)
	}

	return tokens, nil
}

// Resolve returns a cached document or asks the wrapped backend. Empty
// results are cached too.
func (c *Cached) Resolve(ctx context.Context, document string) (*model.Document, error) {
	key := cache.Key("coref", c.next.Name(), document)

	if data, ok := c.cache.Get(key); ok {
		var doc *model.Document
		if err := json.Unmarshal(data, &doc); err == nil {
			return doc, nil
		}
	}

	doc, err := c.next.Resolve(ctx, document)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(doc); err == nil {
		_ = c.cache.Set(key, data, c.ttl)
	}

	return doc, nil
}

// Unwrap returns the wrapped backend
func (c *Cached) Unwrap() Annotator {
	return c.next
}

// Stats reports the cache's hit counts when the cache keeps them
func (c *Cached) Stats() (cache.Stats, bool) {
	if s, ok := c.cache.(interface{ Stats() cache.Stats }); ok {
		return s.Stats(), true
	}
	return cache.Stats{}, false
}
