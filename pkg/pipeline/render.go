package pipeline

import (
	"context"
	"fmt"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/render/precedence"
	"github.com/doyel/gantt/pkg/render/sink"
)

// Render generates output artifacts in the requested formats, uncached.
func Render(ctx context.Context, ds *gantt.Dataset, snap *layout.Snapshot, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if opts.IsPrecedence() {
		if ds == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "precedence view needs a dataset")
		}
		return renderPrecedence(ctx, ds, opts)
	}
	if snap == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gantt view needs a snapshot")
	}
	return renderGantt(snap, opts)
}

// renderGantt generates chart outputs from a snapshot.
func renderGantt(snap *layout.Snapshot, opts Options) (map[string][]byte, error) {
	svgOpts, err := buildSVGOptions(opts)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(snap, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(snap)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported gantt format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderPrecedence generates precedence graph outputs from a dataset.
func renderPrecedence(ctx context.Context, ds *gantt.Dataset, opts Options) (map[string][]byte, error) {
	dot := precedence.ToDOT(ds, precedence.Options{
		Detailed: opts.Detailed,
		Location: opts.Layout.WithDefaults().Location,
	})

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = precedence.RenderSVG(ctx, dot)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported precedence format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) ([]sink.SVGOption, error) {
	style, err := sink.StyleByName(opts.Style)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "style")
	}
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if opts.ShowHours {
		svgOpts = append(svgOpts, sink.WithHours())
	}
	if opts.HideToday {
		svgOpts = append(svgOpts, sink.WithoutToday())
	}
	return svgOpts, nil
}
