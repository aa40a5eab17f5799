package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/wnli/internal/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the annotation cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached annotation from cache.disk_dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Cache.DiskDir == "" {
			return fmt.Errorf("cache.disk_dir is not set")
		}

		if err := cache.NewDiskCache(cfg.Cache.DiskDir, cfg.Cache.DiskTTL).Clear(); err != nil {
			return fmt.Errorf("error clearing cache: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ Cleared annotation cache: %s\n", cfg.Cache.DiskDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
