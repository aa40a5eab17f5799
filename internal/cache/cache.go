package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores annotation responses by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Stats counts lookups served by each layer
type Stats struct {
	MemoryHits int64 `json:"memory_hits"`
	DiskHits   int64 `json:"disk_hits"`
	Misses     int64 `json:"misses"`
}

// Lookups returns the total number of Get calls
func (s Stats) Lookups() int64 {
	return s.MemoryHits + s.DiskHits + s.Misses
}

// Key builds a cache key for an annotation of text. kind separates parses
// from coreference documents, backend separates providers.
func Key(kind, backend, text string) string {
	hash := sha256.Sum256([]byte(text))
	return "wnli_v1_" + kind + "_" + backend + "_" + hex.EncodeToString(hash[:])
}
