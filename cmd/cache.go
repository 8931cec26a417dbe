package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/ndview/internal/cache"
)

var cacheCleanAll bool

// cacheCmd groups maintenance of the remote image cache
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the cache of downloaded images",
	Long: `Images of grids stored in R2 are downloaded into a local cache
(cache.dir, limited to cache.max_size_mb).

Examples:
  ndview cache stats
  ndview cache verify
  ndview cache clean --all`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %s\n", GetConfig().Cache.Dir, c.Stats())
		return nil
	},
}

var cacheVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check cached images against their checksums and drop broken ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		return verifyCache(os.Stdout, c)
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Evict least recently used images until the cache fits its limit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		return cleanCache(os.Stdout, c, cacheCleanAll)
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheVerifyCmd, cacheCleanCmd)

	cacheCleanCmd.Flags().BoolVar(&cacheCleanAll, "all", false, "remove every cached image")
}

func openCache() (*cache.Cache, error) {
	cfg := GetConfig()
	c, err := cache.New(nil, cfg.Cache.Dir, cfg.Cache.CacheMaxBytes())
	if err != nil {
		return nil, fmt.Errorf("failed to open image cache: %w", err)
	}
	return c, nil
}

func verifyCache(out io.Writer, c *cache.Cache) error {
	broken := 0
	keys := c.Keys()
	for _, key := range keys {
		ok, err := c.Verify(key)
		if err == nil && ok {
			continue
		}
		broken++
		logrus.WithError(err).WithField("key", key).Warn("dropping broken cache entry")
		fmt.Fprintf(out, "broken: %s\n", key)
		if err := c.Delete(key); err != nil {
			return fmt.Errorf("failed to drop %s: %w", key, err)
		}
	}
	fmt.Fprintf(out, "%d of %d cached images verified, %d dropped\n", len(keys)-broken, len(keys), broken)
	return nil
}

func cleanCache(out io.Writer, c *cache.Cache, all bool) error {
	before := c.Stats()
	if all {
		for _, key := range c.Keys() {
			if err := c.Delete(key); err != nil {
				return fmt.Errorf("failed to remove %s: %w", key, err)
			}
		}
	} else if err := c.Cleanup(); err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}
	fmt.Fprintf(out, "before: %s\nafter:  %s\n", before, c.Stats())
	return nil
}
