package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hal/testhound/config"
	"github.com/hal/testhound/internal/cache"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache() *cobra.Command {
	var cacheFile string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the processed-repository cache",
	}
	cmd.PersistentFlags().StringVar(&cacheFile, "cache-file", "", "Cache file path (default: user cache directory)")

	cmd.AddCommand(newCmdCacheStats(&cacheFile))
	cmd.AddCommand(newCmdCacheClear(&cacheFile))

	return cmd
}

func openCache(cacheFile string) *cache.Cache {
	if cacheFile == "" {
		cacheFile = config.DefaultCachePath()
	}
	return cache.New(cacheFile)
}

func newCmdCacheStats(cacheFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openCache(*cacheFile)
			c.Load()

			stats := c.Stats()
			fmt.Printf("Cache file: %s\n", c.Path())
			fmt.Printf("  Repositories: %d\n", stats.Total)
			fmt.Printf("  Fresh (skip-eligible): %d\n", stats.Fresh)
			fmt.Printf("  Expired: %d\n", stats.Expired)
			fmt.Printf("  Qualifying PRs recorded: %d\n", stats.TotalFound)
			return nil
		},
	}
}

func newCmdCacheClear(cacheFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the processed-repository cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openCache(*cacheFile)
			if err := c.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Println("Cache cleared.")
			return nil
		},
	}
}
