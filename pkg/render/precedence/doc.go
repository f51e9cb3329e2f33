// Package precedence renders a dataset's successor relation as a directed
// graph using Graphviz.
//
// Where the Gantt chart places tasks on a time axis, the precedence view
// only shows which task must finish before which, grouped in one cluster per
// resource:
//
//	dot := precedence.ToDOT(ds, precedence.Options{Location: loc})
//	svg, err := precedence.RenderSVG(ctx, dot)
//
// Successor identifiers that match no task are left out, the same way the
// layout engine skips connectors without a target bar.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package precedence
