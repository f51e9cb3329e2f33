package layout

import (
	"time"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/observability"
	"github.com/doyel/gantt/pkg/timescale"
)

// Engine is the control surface a host drives. It owns the current
// snapshot and the zoom state, and holds the dataset by reference.
//
// Mutating calls (ZoomIn, ZoomOut, SetHoursPerCell, SetViewport, AddTask)
// never recompute; the host calls Recompute afterwards. An Engine is not
// safe for concurrent use.
type Engine struct {
	ds       *gantt.Dataset
	cfg      Config
	scale    *timescale.Scale
	viewport *Viewport
	now      func() time.Time
	snap     *Snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for the today marker.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithViewport fixes the viewport instead of the dataset's own window.
func WithViewport(v Viewport) Option {
	return func(e *Engine) { e.viewport = &v }
}

// New returns an engine over ds. No layout is computed until Recompute.
func New(ds *gantt.Dataset, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "layout config")
	}
	cfg = cfg.WithDefaults()
	scale, err := cfg.NewScale()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "layout config")
	}
	if ds == nil {
		ds = &gantt.Dataset{}
	}
	e := &Engine{ds: ds, cfg: cfg, scale: scale, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Recompute runs a full layout pass and replaces the current snapshot.
//
// When the pass fails structurally the previous snapshot is kept and the
// error returned. When only individual tasks are rejected the new snapshot
// is stored and returned along with a *errors.RejectedTasksError.
func (e *Engine) Recompute() (*Snapshot, error) {
	start := time.Now()
	hooks := observability.Layout()
	hooks.OnRecomputeStart(e.ds.TaskCount())

	snap, err := Compute(Input{
		Dataset:  e.ds,
		Scale:    e.scale,
		Config:   e.cfg,
		Viewport: e.viewport,
		Now:      e.now(),
	})
	if snap != nil {
		e.snap = snap
		hooks.OnRecomputeComplete(observability.LayoutStats{
			Rows:       len(snap.Rows),
			Bars:       len(snap.Bars),
			Connectors: len(snap.Connectors),
			Rejected:   len(snap.Rejected),
		}, time.Since(start), err)
		return snap, err
	}
	hooks.OnRecomputeComplete(observability.LayoutStats{}, time.Since(start), err)
	return e.snap, err
}

// Snapshot returns the most recent snapshot, or nil before the first
// successful Recompute.
func (e *Engine) Snapshot() *Snapshot { return e.snap }

// Dataset returns the dataset the engine lays out.
func (e *Engine) Dataset() *gantt.Dataset { return e.ds }

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// PixelsPerHour returns the current zoom.
func (e *Engine) PixelsPerHour() float64 { return e.scale.PixelsPerHour() }

// ZoomIn increases the zoom one step and returns the new value.
func (e *Engine) ZoomIn() float64 { return e.scale.ZoomIn() }

// ZoomOut decreases the zoom one step and returns the new value.
func (e *Engine) ZoomOut() float64 { return e.scale.ZoomOut() }

// SetHoursPerCell sets the zoom in pixels per hour, clamped to the
// configured bounds, and returns the stored value.
func (e *Engine) SetHoursPerCell(pixelsPerHour float64) float64 {
	return e.scale.SetHoursPerCell(pixelsPerHour)
}

// SetViewport fixes the viewport. Nil returns to the dataset's window, or
// to auto-fit when the dataset has none.
func (e *Engine) SetViewport(v *Viewport) {
	if v == nil {
		e.viewport = nil
		return
	}
	c := *v
	e.viewport = &c
}

// Viewport returns the window the next Recompute would use.
func (e *Engine) Viewport() (Viewport, error) {
	if e.viewport != nil {
		return *e.viewport, nil
	}
	return ResolveViewport(e.ds, e.cfg.Location)
}

// AddTask appends t to the named resource and returns its identifier.
// The snapshot is unchanged until the next Recompute.
func (e *Engine) AddTask(resourceID string, t gantt.Task) (string, error) {
	return e.ds.AddTask(resourceID, t)
}

// MinMaxDates returns the auto-fit window over every valid task,
// regardless of any fixed viewport.
func (e *Engine) MinMaxDates() Viewport {
	return MinMaxDates(e.ds, e.cfg.Location)
}
