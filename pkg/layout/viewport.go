package layout

import (
	"fmt"
	"time"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/timescale"
)

// Viewport is the rendered time window. Empty marks a derived window over
// a dataset without a single valid task; nothing is drawn for it.
type Viewport struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Empty bool      `json:"empty"`
}

// Duration returns End - Start.
func (v Viewport) Duration() time.Duration { return v.End.Sub(v.Start) }

// Contains reports whether t lies in [Start, End], both ends inclusive.
func (v Viewport) Contains(t time.Time) bool {
	return !v.Empty && !t.Before(v.Start) && !t.After(v.End)
}

// Shift returns the viewport moved by d.
func (v Viewport) Shift(d time.Duration) Viewport {
	if v.Empty {
		return v
	}
	return Viewport{Start: v.Start.Add(d), End: v.End.Add(d)}
}

// MaxViewportHours is the longest explicit viewport, ten years.
const MaxViewportHours = 10 * 366 * 24

// NewViewport returns an explicit viewport, failing with
// INVALID_TIME_RANGE when end is before start or the window is longer
// than MaxViewportHours.
func NewViewport(start, end time.Time) (Viewport, error) {
	if end.Before(start) {
		return Viewport{}, errors.New(errors.ErrCodeInvalidTimeRange,
			"viewport end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if h := timescale.Hours(end, start); h > MaxViewportHours {
		return Viewport{}, errors.New(errors.ErrCodeInvalidTimeRange,
			"viewport spans %.0f hours, at most %d allowed", h, MaxViewportHours)
	}
	return Viewport{Start: start, End: end}, nil
}

// ResolveViewport returns the dataset's explicit window when it has one,
// and otherwise the window spanning every valid task.
func ResolveViewport(ds *gantt.Dataset, loc *time.Location) (Viewport, error) {
	if ds.Viewport == nil {
		return MinMaxDates(ds, loc), nil
	}
	start, err := ds.Viewport.Start.Resolve(loc)
	if err != nil {
		return Viewport{}, errors.Wrap(errors.ErrCodeInvalidTimeRange, err, "viewport start")
	}
	end, err := ds.Viewport.End.Resolve(loc)
	if err != nil {
		return Viewport{}, errors.Wrap(errors.ErrCodeInvalidTimeRange, err, "viewport end")
	}
	return NewViewport(start, end)
}

// MinMaxDates returns [min, max] over the start and end instants of every
// task whose range is valid. A dataset without valid tasks yields an Empty
// viewport rather than an error.
func MinMaxDates(ds *gantt.Dataset, loc *time.Location) Viewport {
	tasks, _ := resolveTasks(ds, loc)
	return spanOf(tasks)
}

func spanOf(tasks []resolvedTask) Viewport {
	if len(tasks) == 0 {
		return Viewport{Empty: true}
	}
	v := Viewport{Start: tasks[0].start, End: tasks[0].end}
	for _, t := range tasks[1:] {
		if t.start.Before(v.Start) {
			v.Start = t.start
		}
		if t.end.After(v.End) {
			v.End = t.end
		}
	}
	return v
}

// resolvedTask is a task whose instants parsed into a valid range.
type resolvedTask struct {
	row   int
	task  *gantt.Task
	start time.Time
	end   time.Time
}

// resolveTasks parses every task's range in dataset order. Tasks that fail
// to parse or end before they start are returned as rejections.
func resolveTasks(ds *gantt.Dataset, loc *time.Location) ([]resolvedTask, []errors.RejectedTask) {
	var (
		valid    = make([]resolvedTask, 0, ds.TaskCount())
		rejected []errors.RejectedTask
	)
	for i := range ds.Resources {
		r := &ds.Resources[i]
		for j := range r.Tasks {
			t := &r.Tasks[j]
			start, end, err := resolveRange(t, loc)
			if err != nil {
				rejected = append(rejected, errors.RejectedTask{TaskID: t.ID, ResourceID: r.ID, Reason: err.Error()})
				continue
			}
			valid = append(valid, resolvedTask{row: i, task: t, start: start, end: end})
		}
	}
	return valid, rejected
}

func resolveRange(t *gantt.Task, loc *time.Location) (time.Time, time.Time, error) {
	start, err := t.Start.Resolve(loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end, err := t.End.Resolve(loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", t.End, t.Start)
	}
	return start, end, nil
}
