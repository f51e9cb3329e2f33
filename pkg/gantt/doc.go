// Package gantt defines the scheduling data the layout engine consumes:
// resources (rows) holding ordered tasks (bars), optional batches that lend
// tasks a fallback color, and precedence links between tasks.
//
// # Data Model
//
// A [Dataset] is an ordered list of [Resource] values. Resource order is row
// order: the first resource is drawn at the top. Each resource owns an
// ordered list of [Task] values. Task identifiers are meant to be unique
// across the whole dataset, because successor links resolve across
// resources:
//
//	ds := gantt.Dataset{Resources: []gantt.Resource{
//	    {ID: "M1", Name: "Machine A", Tasks: []gantt.Task{
//	        {ID: "A1", Start: gantt.ParseInstant("2025-08-10T06:00:00"),
//	            End: gantt.ParseInstant("2025-08-10T18:00:00"), Successors: []string{"B2"}},
//	    }},
//	    {ID: "M2", Name: "Machine B", Tasks: []gantt.Task{
//	        {ID: "B2", Start: gantt.ParseInstant("2025-08-10T20:00:00"),
//	            End: gantt.ParseInstant("2025-08-11T10:00:00")},
//	    }},
//	}}
//
// Successors express drawn precedence only. Nothing in this package checks
// for cycles, overlaps or feasibility.
//
// # Instants
//
// Task boundaries are [Instant] values. An Instant holds either a parsed
// time.Time or the raw string it was decoded from; parsing is deferred to
// [Instant.Resolve] so that one malformed task can be rejected by the layout
// pass without failing the whole decode.
//
// # Mutation
//
// [Dataset.AddTask] appends a task to a named resource and generates an
// identifier when the caller leaves it blank. It never recomputes a layout.
package gantt
