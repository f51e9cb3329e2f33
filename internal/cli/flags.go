package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/config"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/pipeline"
)

// layoutFlags are the layout settings a command can override. Only flags
// the user actually set replace config values.
type layoutFlags struct {
	pixelsPerHour float64
	rowHeight     float64
	router        string
	duplicates    string
	timezone      string
	start         string
	end           string
}

func (f *layoutFlags) register(cmd *cobra.Command, withViewport bool) {
	d := config.Default().Layout
	cmd.Flags().Float64Var(&f.pixelsPerHour, "pixels-per-hour", d.PixelsPerHour, "zoom in pixels per hour")
	cmd.Flags().Float64Var(&f.rowHeight, "row-height", d.RowHeight, "row height in pixels")
	cmd.Flags().StringVar(&f.router, "router", d.Router, "connector routing: curved (default), elbow")
	cmd.Flags().StringVar(&f.duplicates, "duplicates", d.Duplicates, "duplicate task ids: last-write-wins (default), reject")
	cmd.Flags().StringVar(&f.timezone, "timezone", d.Timezone, "time zone for instants without an offset")
	if withViewport {
		cmd.Flags().StringVar(&f.start, "start", "", "viewport start (default: dataset window or auto-fit)")
		cmd.Flags().StringVar(&f.end, "end", "", "viewport end")
	}
	registerValueCompletions(cmd)
}

// apply copies the flags the user set onto cfg.
func (f *layoutFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("pixels-per-hour") {
		cfg.Layout.PixelsPerHour = f.pixelsPerHour
	}
	if flags.Changed("row-height") {
		cfg.Layout.RowHeight = f.rowHeight
	}
	if flags.Changed("router") {
		cfg.Layout.Router = f.router
	}
	if flags.Changed("duplicates") {
		cfg.Layout.Duplicates = f.duplicates
	}
	if flags.Changed("timezone") {
		cfg.Layout.Timezone = f.timezone
	}
}

// viewport returns the explicit window given by --start and --end, or nil.
func (f *layoutFlags) viewport(loc *time.Location) (*layout.Viewport, error) {
	if f.start == "" && f.end == "" {
		return nil, nil
	}
	if f.start == "" || f.end == "" {
		return nil, fmt.Errorf("--start and --end must be given together")
	}
	start, err := gantt.ParseInstant(f.start).Resolve(loc)
	if err != nil {
		return nil, fmt.Errorf("--start: %w", err)
	}
	end, err := gantt.ParseInstant(f.end).Resolve(loc)
	if err != nil {
		return nil, fmt.Errorf("--end: %w", err)
	}
	vp, err := layout.NewViewport(start, end)
	if err != nil {
		return nil, err
	}
	return &vp, nil
}

// renderFlags are the render settings a command can override.
type renderFlags struct {
	vizType  string
	formats  string
	style    string
	hours    bool
	noToday  bool
	detailed bool
}

func (f *renderFlags) register(cmd *cobra.Command, withType bool) {
	d := config.Default().Render
	if withType {
		cmd.Flags().StringVarP(&f.vizType, "type", "t", d.VizType, "visualization type: gantt (default), precedence")
		cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show task times in precedence nodes")
	}
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s), comma-separated: svg (default), json, dot")
	cmd.Flags().StringVar(&f.style, "style", d.Style, "color style: light (default), dark")
	cmd.Flags().BoolVar(&f.hours, "hours", d.ShowHours, "draw hour lines")
	cmd.Flags().BoolVar(&f.noToday, "no-today", false, "hide the today marker")
}

func (f *renderFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("type") {
		cfg.Render.VizType = f.vizType
	}
	if flags.Changed("format") {
		cfg.Render.Formats = parseFormats(f.formats)
	}
	if flags.Changed("style") {
		cfg.Render.Style = f.style
	}
	if flags.Changed("hours") {
		cfg.Render.ShowHours = f.hours
	}
	if flags.Changed("no-today") {
		cfg.Render.ShowToday = !f.noToday
	}
}

// pipelineOptions validates cfg after flag overrides and converts it.
func pipelineOptions(cfg *config.Config, lf *layoutFlags, rf *renderFlags) (pipeline.Options, error) {
	if len(cfg.Render.Formats) == 0 {
		cfg.Render.Formats = []string{pipeline.FormatSVG}
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return pipeline.Options{}, err
	}
	if lf != nil {
		vp, err := lf.viewport(opts.Layout.WithDefaults().Location)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Viewport = vp
	}
	if rf != nil {
		opts.Detailed = rf.detailed
	}
	return opts, nil
}
