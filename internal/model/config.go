package model

import "time"

// Config is the complete wnli configuration
type Config struct {
	Service      ServiceConfig     `yaml:"service" mapstructure:"service"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Predict      PredictConfig     `yaml:"predict" mapstructure:"predict"`
	Augment      AugmentConfig     `yaml:"augment" mapstructure:"augment"`
	Lexicon      LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ServiceConfig selects the annotation backend (parser + coreference resolver)
type ServiceConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // http, openai
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"` // Empty uses the provider's own default
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model      string        `yaml:"model,omitempty" mapstructure:"model"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls memoization of annotation responses
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig bounds calls to the annotation service
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// PredictConfig controls the coreference classifier
type PredictConfig struct {
	UseCoref bool  `yaml:"use_coref" mapstructure:"use_coref"`
	Majority Label `yaml:"majority" mapstructure:"majority"`
	Debug    bool  `yaml:"debug" mapstructure:"debug"`
}

// AugmentConfig controls the augmenter
type AugmentConfig struct {
	Seed int64 `yaml:"seed" mapstructure:"seed"` // 0 means seed from the clock
}

// LexiconConfig points at user-supplied lexical resources
type LexiconConfig struct {
	PronounTable string `yaml:"pronoun_table,omitempty" mapstructure:"pronoun_table"` // Empty uses the built-in table
}

// OutputConfig controls reporting
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Provider: "http",
			Timeout:  30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   false,
			MemoryTTL: 1 * time.Hour,
			DiskDir:   ".wnli-cache",
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Predict: PredictConfig{
			UseCoref: true,
			Majority: Majority,
		},
	}
}
