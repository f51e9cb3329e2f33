// Package pkg holds the public libraries of the gantt module.
//
// # Overview
//
// A gantt chart is computed in three steps, each in its own package:
//
//	gantt.Dataset (resources, tasks, successors)
//	         ↓
//	    [io] decode JSON, YAML or TOML and check the schema
//	         ↓
//	    [layout] time scale, viewport, rows, bars, grid, connectors, today
//	         ↓
//	    [render] SVG or JSON chart, or a Graphviz precedence graph
//
// [pipeline] runs those steps with caching, and [config] supplies layered
// settings to the CLI and the HTTP server.
//
// # Quick Start
//
//	ds, _ := io.ReadDataset("plan.json")
//	engine, _ := layout.New(ds, layout.Config{PixelsPerHour: 20})
//	snap, _ := engine.Recompute()
//	svg := sink.RenderSVG(snap)
//
// # Packages
//
// [gantt] - Datasets, tasks and the zone-aware Instant type.
//
// [timescale] - Zoom state and the time to x mapping.
//
// [layout] - The engine and the immutable Snapshot it produces.
//
// [cache] - File, Redis and MongoDB caches for layouts and artifacts.
//
// [errors] - Coded errors shared by the CLI and the server.
//
// [observability] - Hooks for pipeline and HTTP events.
//
// [io]: github.com/doyel/gantt/pkg/io
// [layout]: github.com/doyel/gantt/pkg/layout
// [render]: github.com/doyel/gantt/pkg/render
// [pipeline]: github.com/doyel/gantt/pkg/pipeline
// [config]: github.com/doyel/gantt/pkg/config
// [gantt]: github.com/doyel/gantt/pkg/gantt
// [timescale]: github.com/doyel/gantt/pkg/timescale
// [cache]: github.com/doyel/gantt/pkg/cache
// [errors]: github.com/doyel/gantt/pkg/errors
// [observability]: github.com/doyel/gantt/pkg/observability
package pkg
