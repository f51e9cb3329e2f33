package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/pipeline"
	"github.com/doyel/gantt/pkg/render/sink"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		rf      renderFlags
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a chart from a computed layout",
		Long: `Render a chart from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG. The layout holds every position, so this step only
paints.

Results are cached for faster subsequent runs.

Use 'render' as a shortcut to go directly from a dataset to a chart.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rf.apply(cmd, c.Config)
			c.Config.Render.VizType = pipeline.VizTypeGantt
			opts, err := pipelineOptions(c.Config, nil, &rf)
			if err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	rf.register(cmd, false)

	return cmd
}

// runVisualize loads the snapshot and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	snap, err := sink.ReadJSON(data)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if !opts.HideToday {
		// The stored marker is from when the layout was computed.
		snap = snap.WithToday(time.Now())
	}

	spinner := newSpinnerWithContext(ctx, "Rendering chart...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, nil, snap, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  cacheHit,
	})
}
