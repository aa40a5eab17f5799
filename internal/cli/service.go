package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/wnli/internal/annotate"
	"github.com/ppiankov/wnli/internal/model"
	"github.com/spf13/cobra"
)

// serviceFlags are shared by every command that talks to the annotation service
type serviceFlags struct {
	provider    string
	baseURL     string
	modelName   string
	timeout     time.Duration
	httpProxy   string
	httpsProxy  string
	noCache     bool
	concurrency int
}

func (f *serviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "annotation provider (http, openai, file)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "annotation service URL, or annotations file for the file provider")
	cmd.Flags().StringVar(&f.modelName, "model", "", "model name for the openai provider")
	cmd.Flags().DurationVar(&f.timeout, "service-timeout", 0, "timeout for a single annotation call")
	cmd.Flags().StringVar(&f.httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&f.httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the annotation cache")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
}

// apply copies flags the user set onto cfg
func (f *serviceFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("provider") {
		cfg.Service.Provider = f.provider
	}
	if cmd.Flags().Changed("base-url") {
		cfg.Service.BaseURL = f.baseURL
	}
	if cmd.Flags().Changed("model") {
		cfg.Service.Model = f.modelName
	}
	if cmd.Flags().Changed("service-timeout") {
		cfg.Service.Timeout = f.timeout
	}
	if cmd.Flags().Changed("http-proxy") {
		cfg.Service.HTTPProxy = f.httpProxy
	}
	if cmd.Flags().Changed("https-proxy") {
		cfg.Service.HTTPSProxy = f.httpsProxy
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if f.concurrency > 0 {
		cfg.Concurrency.Workers = f.concurrency
	}
}

// connect builds the configured annotator and checks that it answers
func connect(ctx context.Context, cfg *model.Config) (annotate.Annotator, error) {
	a, err := annotate.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create annotator: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Checking %s annotation service...\n", a.Name())
	}
	if !annotate.CheckAvailable(ctx, a) {
		return nil, fmt.Errorf("annotation service %s is not available", cfg.Service.Provider)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Annotation service ready\n")
	}

	return a, nil
}

// printCacheStats reports annotation cache usage in verbose mode
func printCacheStats(a annotate.Annotator) {
	cached, ok := a.(*annotate.Cached)
	if !ok || !verbose {
		return
	}
	if s, ok := cached.Stats(); ok && s.Lookups() > 0 {
		fmt.Fprintf(os.Stderr, "✓ Cache: %d memory hits, %d disk hits, %d misses\n", s.MemoryHits, s.DiskHits, s.Misses)
	}
}
