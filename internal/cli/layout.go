package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/pipeline"
	"github.com/doyel/gantt/pkg/render/sink"
)

// layoutCommand creates the layout command for computing snapshots.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Compute a chart layout from a dataset",
		Long: `Compute a chart layout from a dataset.

The layout command reads a dataset (.json, .yaml or .toml) and computes the
snapshot: row bands, grid ticks, bar rectangles, connector paths and the
today marker. The output is a layout.json file (same format as
'render -f json') that 'visualize' turns into SVG.

Tasks whose end precedes their start are left out and reported.

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, c.Config)
			opts, err := pipelineOptions(c.Config, &lf, nil)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	lf.register(cmd, true)

	return cmd
}

// runLayout loads the dataset, computes the snapshot, and writes it.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ds, err := runner.Parse(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}
	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	snap, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, ds, opts)
	var rejected *errors.RejectedTasksError
	if err != nil && !stderrors.As(err, &rejected) {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	data, err := sink.RenderJSON(snap)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(snap.Rows), len(snap.Bars), len(snap.Connectors), cacheHit)
	printRejected(snap.Rejected)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
