// Package render groups the output formats of the gantt module.
//
// # Gantt Chart
//
// The [sink] subpackage turns a [layout.Snapshot] into SVG or JSON. It only
// draws; every coordinate comes from the snapshot, so renderers never
// disagree with each other about where a bar is.
//
//	snap, _ := engine.Recompute()
//	svg := sink.RenderSVG(snap, sink.WithStyle(sink.Dark), sink.WithHours())
//	data, _ := sink.RenderJSON(snap)
//
// # Precedence Graph
//
// The [precedence] subpackage ignores time and draws the successor relation
// as a Graphviz digraph with one cluster per resource.
//
//	dot := precedence.ToDOT(ds, precedence.Options{})
//	svg, err := precedence.RenderSVG(ctx, dot)
//
// [sink]: github.com/doyel/gantt/pkg/render/sink
// [precedence]: github.com/doyel/gantt/pkg/render/precedence
// [layout.Snapshot]: github.com/doyel/gantt/pkg/layout#Snapshot
package render
