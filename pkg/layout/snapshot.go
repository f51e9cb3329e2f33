package layout

import (
	"math"
	"strings"
	"time"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/timescale"
)

// Snapshot is the complete geometry of one layout pass. A snapshot is never
// modified after it is returned; every pass builds a new one.
type Snapshot struct {
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
	PixelsPerHour float64  `json:"pixels_per_hour"`
	LeftGutter    float64  `json:"left_gutter"`
	HeaderHeight  float64  `json:"header_height"`
	RowHeight     float64  `json:"row_height"`
	Router        string   `json:"router"`
	Viewport      Viewport `json:"viewport"`

	DayLines   []GridLine     `json:"day_lines"`
	HourLines  []GridLine     `json:"hour_lines"`
	Rows       []RowPlacement `json:"rows"`
	Bars       []BarPlacement `json:"bars"`
	Connectors []Connector    `json:"connectors"`

	// TodayX is nil when the current instant is outside the viewport.
	TodayX *float64 `json:"today_x"`
	// ComputedAt is the instant TodayX was evaluated for.
	ComputedAt time.Time `json:"computed_at"`

	Rejected []errors.RejectedTask `json:"rejected,omitempty"`
}

// Bar returns the bar the connector lookup resolves id to.
func (s *Snapshot) Bar(id string) (BarPlacement, bool) {
	for i := len(s.Bars) - 1; i >= 0; i-- {
		if s.Bars[i].TaskID == id {
			return s.Bars[i], true
		}
	}
	return BarPlacement{}, false
}

// WithToday returns a copy of s whose today marker is evaluated for now.
// Everything else is shared with s.
func (s *Snapshot) WithToday(now time.Time) *Snapshot {
	out := *s
	out.TodayX = TodayX(now, s.Viewport, s.PixelsPerHour, s.LeftGutter)
	out.ComputedAt = now
	return &out
}

// Input is everything one layout pass depends on.
type Input struct {
	Dataset *gantt.Dataset
	Scale   *timescale.Scale
	Config  Config
	// Viewport overrides the dataset's window when set.
	Viewport *Viewport
	Now      time.Time
}

// Compute runs one full layout pass:
//
//	viewport → rows → grid → bars → connectors → today marker
//
// It fails without a snapshot when the viewport is invalid or, under
// RejectDuplicates, when task identifiers repeat. Tasks with an invalid
// range do not fail the pass: they are listed in Snapshot.Rejected and the
// snapshot is returned together with a *errors.RejectedTasksError.
func Compute(in Input) (*Snapshot, error) {
	cfg := in.Config.WithDefaults()
	ds := in.Dataset
	if ds == nil {
		ds = &gantt.Dataset{}
	}
	scale := in.Scale
	if scale == nil {
		var err error
		if scale, err = cfg.NewScale(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "layout config")
		}
	}

	if cfg.Duplicates == RejectDuplicates {
		if dups := ds.DuplicateTaskIDs(); len(dups) > 0 {
			return nil, errors.New(errors.ErrCodeDuplicateTaskID, "duplicate task ids: %s", strings.Join(dups, ", "))
		}
	}

	tasks, rejected := resolveTasks(ds, cfg.Location)

	var vp Viewport
	switch {
	case in.Viewport != nil:
		if in.Viewport.Empty {
			vp = Viewport{Empty: true}
		} else {
			v, err := NewViewport(in.Viewport.Start, in.Viewport.End)
			if err != nil {
				return nil, err
			}
			vp = v
		}
	case ds.Viewport != nil:
		v, err := ResolveViewport(ds, cfg.Location)
		if err != nil {
			return nil, err
		}
		vp = v
	default:
		vp = spanOf(tasks)
	}

	pph := scale.PixelsPerHour()
	rows, height := BuildRows(ds.Resources, cfg)
	days, hours := BuildGrid(vp, scale, cfg)
	bars := buildBars(ds, tasks, rows, vp, scale, cfg)
	connectors := BuildConnectors(ds, bars, IndexBars(bars), cfg)

	timeWidth := 0.0
	if !vp.Empty {
		timeWidth = math.Max(0, scale.ToX(vp.End, vp.Start))
	}

	snap := &Snapshot{
		Width:         cfg.LeftGutter + timeWidth + cfg.RightPadding,
		Height:        height,
		PixelsPerHour: pph,
		LeftGutter:    cfg.LeftGutter,
		HeaderHeight:  cfg.HeaderHeight,
		RowHeight:     cfg.RowHeight,
		Router:        cfg.Router.Name(),
		Viewport:      vp,
		DayLines:      days,
		HourLines:     hours,
		Rows:          rows,
		Bars:          bars,
		Connectors:    connectors,
		TodayX:        TodayX(in.Now, vp, pph, cfg.LeftGutter),
		ComputedAt:    in.Now,
		Rejected:      rejected,
	}
	if len(rejected) > 0 {
		return snap, &errors.RejectedTasksError{Tasks: rejected}
	}
	return snap, nil
}
