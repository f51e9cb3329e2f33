// Package pipeline runs the parse → layout → render pipeline for Gantt
// datasets.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// logging and defaults behave the same from every entry point.
//
// # Stages
//
//  1. Parse: read a dataset file (JSON, YAML or TOML)
//  2. Layout: compute a [layout.Snapshot] from the dataset
//  3. Render: turn the snapshot (or the dataset, for the precedence view)
//     into SVG, JSON or DOT
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	ds, err := runner.Parse(ctx, "plan.yaml")
//	result, err := runner.Execute(ctx, ds, pipeline.Options{Formats: []string{"svg"}})
//	svg := result.Artifacts["svg"]
//
// Layouts are cached by the dataset's content hash plus every layout
// option. The today marker is evaluated again on every cache hit, so a
// cached layout never shows a stale marker.
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/doyel/gantt/pkg/cache"
	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/render/sink"
)

// =============================================================================
// Default Values
// =============================================================================

// Visualization types.
const (
	VizTypeGantt      = "gantt"
	VizTypePrecedence = "precedence"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

const (
	DefaultVizType = VizTypeGantt
	DefaultStyle   = sink.StyleLight
)

// ValidFormats lists the formats each visualization type supports.
var ValidFormats = map[string]map[string]bool{
	VizTypeGantt:      {FormatSVG: true, FormatJSON: true},
	VizTypePrecedence: {FormatSVG: true, FormatDOT: true},
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	sink.StyleLight: true,
	sink.StyleDark:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Layout options. Zero fields take the layout defaults.
	Layout   layout.Config    `json:"-"`
	Viewport *layout.Viewport `json:"viewport,omitempty"`

	// Render options
	VizType   string   `json:"viz_type,omitempty"`
	Formats   []string `json:"formats,omitempty"`
	Style     string   `json:"style,omitempty"`
	ShowHours bool     `json:"show_hours,omitempty"`
	HideToday bool     `json:"hide_today,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"` // precedence node labels carry times

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// DatasetHash is the content hash of the dataset's JSON encoding.
	DatasetHash string

	// Snapshot is the computed layout.
	Snapshot *layout.Snapshot

	// Rejected lists tasks left out of the layout for an invalid range.
	Rejected []errors.RejectedTask

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ResourceCount int
	TaskCount     int
	LinkCount     int
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the snapshot came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if _, ok := ValidFormats[vizType]; !ok {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type: %q (must be one of: gantt, precedence)", vizType)
	}
	return nil
}

// ValidateFormat checks that vizType can be rendered as format.
func ValidateFormat(vizType, format string) error {
	if err := ValidateVizType(vizType); err != nil {
		return err
	}
	if !ValidFormats[vizType][format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format for %s: %q (must be one of: %s)",
			vizType, format, strings.Join(formatsOf(vizType), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid for vizType.
func ValidateFormats(vizType string, formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(vizType, f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: light, dark)", style)
	}
	return nil
}

func formatsOf(vizType string) []string {
	var out []string
	for _, f := range []string{FormatSVG, FormatJSON, FormatDOT} {
		if ValidFormats[vizType][f] {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every option and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Layout = o.Layout.WithDefaults()
	o.setRuntimeDefaults()
}

// ValidateForLayout validates the layout config, then sets defaults.
func (o *Options) ValidateForLayout() error {
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout config")
	}
	o.SetLayoutDefaults()
	if o.Viewport != nil && o.Viewport.End.Before(o.Viewport.Start) {
		return errors.New(errors.ErrCodeInvalidTimeRange, "viewport end %s is before start %s",
			o.Viewport.End.Format(time.RFC3339), o.Viewport.Start.Format(time.RFC3339))
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	o.setRuntimeDefaults()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.VizType, o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

func (o *Options) setRuntimeDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// IsPrecedence returns true for the precedence graph view.
func (o *Options) IsPrecedence() bool {
	return o.VizType == VizTypePrecedence
}

// LayoutKeyOpts returns cache key options for layout computation.
// PixelsPerHour is the density after clamping to the configured bounds.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg := o.Layout.WithDefaults()
	pph := cfg.PixelsPerHour
	if scale, err := cfg.NewScale(); err == nil {
		pph = scale.PixelsPerHour()
	}
	k := cache.LayoutKeyOpts{
		PixelsPerHour:    pph,
		MinPixelsPerHour: cfg.MinPixelsPerHour,
		MaxPixelsPerHour: cfg.MaxPixelsPerHour,
		ZoomFactor:       cfg.ZoomFactor,
		RowHeight:        cfg.RowHeight,
		LeftGutter:       cfg.LeftGutter,
		HeaderHeight:     cfg.HeaderHeight,
		MinBarWidth:      cfg.MinBarWidth,
		BottomPadding:    cfg.BottomPadding,
		RightPadding:     cfg.RightPadding,
		ConnectorPadding: cfg.ConnectorPadding,
		Router:           cfg.Router.Name(),
		Duplicates:       string(cfg.Duplicates),
		Timezone:         cfg.Location.String(),
	}
	if o.Viewport != nil {
		k.ViewportStart = o.Viewport.Start.UTC().Format(time.RFC3339Nano)
		k.ViewportEnd = o.Viewport.End.UTC().Format(time.RFC3339Nano)
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		VizType:   o.VizType,
		Format:    format,
		Style:     o.Style,
		ShowHours: o.ShowHours,
		ShowToday: !o.HideToday,
		Detailed:  o.Detailed,
	}
}
