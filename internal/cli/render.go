package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/pipeline"
)

// renderCommand creates the render command: dataset in, chart out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		lf      layoutFlags
		rf      renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset to SVG, JSON or DOT",
		Long: `Render a dataset to SVG, JSON or DOT.

render runs layout and visualize in one step. The gantt view (-t gantt)
writes svg or json; the precedence view (-t precedence) draws the successor
graph with Graphviz and writes svg or dot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, c.Config)
			rf.apply(cmd, c.Config)
			opts, err := pipelineOptions(c.Config, &lf, &rf)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	lf.register(cmd, true)
	rf.register(cmd, true)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ds, err := runner.Parse(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s chart...", opts.VizType))
	spinner.Start()

	res, err := runner.Execute(ctx, ds, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}
	printStats(len(res.Snapshot.Rows), len(res.Snapshot.Bars), len(res.Snapshot.Connectors), res.CacheInfo.RenderHit)
	printRejected(res.Rejected)
	return nil
}

// =============================================================================
// Output
// =============================================================================

// artifactWriteParams describes the files one command writes.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes one file per format and prints where they went.
func writeArtifacts(p artifactWriteParams) error {
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output was produced", format)
		}
		path := artifactPath(p.output, p.input, format, len(p.formats))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	status := "Rendered"
	if p.cacheHit {
		status = "Rendered (cached)"
	}
	printSuccess("%s %s", status, strings.Join(p.formats, ", "))
	for _, format := range p.formats {
		printFile(artifactPath(p.output, p.input, format, len(p.formats)))
	}
	return nil
}

// artifactPath picks the file name for one format. A single format writes
// to output verbatim; several formats share output as a base name.
func artifactPath(output, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath strips the extension from output, or from input when no output
// was given. A ".layout" suffix left by the layout command is dropped too.
func basePath(output, input string) string {
	src := output
	if src == "" {
		src = input
	}
	base := strings.TrimSuffix(src, filepath.Ext(src))
	return strings.TrimSuffix(base, ".layout")
}
