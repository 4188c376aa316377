package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/bugbench/internal/cache"
	"github.com/dshills/bugbench/internal/config"
)

func newCacheCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model response cache",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached model responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(true)
			if err != nil {
				return fail(err)
			}
			n, err := c.Clear()
			if err != nil {
				return fail(fmt.Errorf("clearing cache: %w", err))
			}
			fmt.Fprintf(e.stdout, "Removed %d cached responses from %s\n", n, c.Dir())
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"show"},
		Short:   "Show cache statistics",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(false)
			if err != nil {
				return fail(err)
			}
			if !c.Enabled() {
				fmt.Fprintln(e.stdout, "Cache is disabled (enable with --cache or `bugbench config set cache.enabled true`).")
				return nil
			}
			stats, err := c.GetStats()
			if err != nil {
				return fail(fmt.Errorf("reading cache stats: %w", err))
			}
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fail(err)
			}
			fmt.Fprintln(e.stdout, string(data))
			return nil
		},
	}

	cmd.AddCommand(clearCmd, showCmd)
	return cmd
}

// openCache opens the configured cache. force enables it regardless of the
// cache.enabled setting.
func openCache(force bool) (*cache.Cache, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(force || cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}
