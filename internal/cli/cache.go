package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.Open(cmd.Context(), c.Config.CacheOptions())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Nothing to clear")
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", cacheLocation(c.Config.CacheOptions()))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(cacheLocation(c.Config.CacheOptions()))
			return nil
		},
	}
}

// cacheLocation describes the backend: a directory for the file cache,
// an address otherwise.
func cacheLocation(opts cache.Options) string {
	switch strings.ToLower(opts.Backend) {
	case cache.BackendRedis:
		return "redis://" + opts.RedisAddr
	case cache.BackendMongo:
		coll := opts.MongoCollection
		if coll == "" {
			coll = cache.DefaultMongoCollection
		}
		return "mongo " + opts.MongoDatabase + "." + coll
	case cache.BackendNone:
		return "disabled"
	default:
		return opts.Dir
	}
}
