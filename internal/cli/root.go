package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/wnli/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wnli",
	Short: "wnli - heuristic coreference baseline and data augmentation for WNLI",
	Long: `wnli labels Winograd NLI pairs by aligning the hypothesis against the
premise and asking a coreference resolver whether the hypothesis reference
and the premise pronoun belong to the same entity.

It can also synthesize extra training pairs by replacing the hypothesis
subject with a pronoun.

Parsing and coreference come from an external annotation service.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wnli %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wnli/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.wnli")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// WNLI_SERVICE_BASE_URL overrides service.base_url
	viper.SetEnvPrefix("WNLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment variables reach Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("service.provider", cfg.Service.Provider)
	viper.SetDefault("service.base_url", cfg.Service.BaseURL)
	viper.SetDefault("service.api_key", cfg.Service.APIKey)
	viper.SetDefault("service.model", cfg.Service.Model)
	viper.SetDefault("service.timeout", cfg.Service.Timeout)
	viper.SetDefault("service.http_proxy", cfg.Service.HTTPProxy)
	viper.SetDefault("service.https_proxy", cfg.Service.HTTPSProxy)
	viper.SetDefault("service.no_proxy", cfg.Service.NoProxy)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_dir", cfg.Cache.DiskDir)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	viper.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	viper.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	viper.SetDefault("predict.use_coref", cfg.Predict.UseCoref)
	viper.SetDefault("predict.majority", int(cfg.Predict.Majority))
	viper.SetDefault("predict.debug", cfg.Predict.Debug)

	viper.SetDefault("augment.seed", cfg.Augment.Seed)
	viper.SetDefault("lexicon.pronoun_table", cfg.Lexicon.PronounTable)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
}

// loadConfig merges defaults, config file and environment
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Service.APIKey == "" && strings.EqualFold(cfg.Service.Provider, "openai") {
		cfg.Service.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}
