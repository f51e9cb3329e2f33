// Package layout turns a [gantt.Dataset] into pixel geometry.
//
// One layout pass runs these stages in order, each consuming only the
// output of the ones before it:
//
//  1. Viewport: the explicit window, or [MinMaxDates] over every valid task
//  2. Rows: one fixed-height band per resource, in resource order
//  3. Grid: day and hour ticks across the viewport
//  4. Bars: one rectangle per task, never narrower than MinBarWidth
//  5. Connectors: one path per resolvable (task, successor) pair
//  6. Today marker: the x of the current instant, or nil
//
// The result is a [Snapshot]. A pass is a pure function of its [Input]; no
// stage performs I/O.
//
// # Engine
//
// [Engine] is the stateful host surface. It keeps the zoom, an optional
// fixed viewport and the last snapshot. Mutations never recompute; the host
// calls [Engine.Recompute] after them:
//
//	eng, _ := layout.New(ds, layout.DefaultConfig())
//	eng.ZoomIn()
//	snap, err := eng.Recompute()
//
// # Failure Modes
//
// An invalid explicit viewport or, under [RejectDuplicates], a repeated
// task id fails the pass; the engine keeps its previous snapshot. Tasks
// whose instants do not parse, or that end before they start, are left out
// of the snapshot and listed in [Snapshot.Rejected]; the pass still
// succeeds and reports them as a *errors.RejectedTasksError.
//
// Dangling successor ids, empty datasets and out-of-range zoom values are
// not errors.
package layout
