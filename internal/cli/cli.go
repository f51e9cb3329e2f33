// Package cli implements the gantt command-line interface.
//
// # Commands
//
//   - layout: compute a snapshot (layout JSON) from a dataset
//   - visualize: render a computed snapshot to SVG or JSON
//   - render: dataset straight to SVG, JSON or DOT
//   - bounds: print the time span of every resource
//   - add-task: append a task to a dataset file
//   - view: interactive terminal chart with zoom and pan
//   - serve: HTTP API
//   - cache: manage the layout and artifact cache
//
// # Configuration
//
// Settings come from gantt.toml files and GANTT_* variables (see package
// config); command flags override them. --config names an explicit file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is carried on the CLI and passed through context.Context.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/buildinfo"
	"github.com/doyel/gantt/pkg/cache"
	"github.com/doyel/gantt/pkg/config"
	"github.com/doyel/gantt/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "gantt"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Loader finds config files; the zero value reads the real environment.
	Loader config.Loader
	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Gantt lays out scheduled tasks as timeline charts",
		Long:         `Gantt computes pixel layouts for resource timelines (rows, bars, day and hour grid, successor connectors and a today marker) and renders them as SVG, JSON or a Graphviz precedence graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				c.Loader.File = configFile
			}
			cfg, err := c.Loader.Load()
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./gantt.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.boundsCommand())
	root.AddCommand(c.addTaskCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, c.Config.CacheOptions())
	if err != nil {
		// Commands run uncached when the backend is unreachable.
		c.Logger.Warn("cache disabled", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
