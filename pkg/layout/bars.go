package layout

import (
	"math"
	"time"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/timescale"
)

// BarPlacement is the rectangle of one task. Y and Height are the owning
// row's band; renderers choose their own vertical inset.
type BarPlacement struct {
	TaskID     string    `json:"task_id"`
	ResourceID string    `json:"resource_id"`
	Label      string    `json:"label"`
	Row        int       `json:"row"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Color      string    `json:"color,omitempty"`
	BatchID    string    `json:"batch,omitempty"`
}

// CenterY returns the vertical center of the bar's row.
func (b BarPlacement) CenterY() float64 { return b.Y + b.Height/2 }

// Right returns the x of the trailing edge.
func (b BarPlacement) Right() float64 { return b.X + b.Width }

// BarIndex maps a task identifier to its position in a bar slice.
type BarIndex map[string]int

// IndexBars builds the identifier lookup. When identifiers repeat, the
// later bar wins.
func IndexBars(bars []BarPlacement) BarIndex {
	idx := make(BarIndex, len(bars))
	for i, b := range bars {
		idx[b.TaskID] = i
	}
	return idx
}

// BuildBars places every task with a valid range and returns the tasks it
// rejected. Bars are never narrower than cfg.MinBarWidth. An Empty
// viewport produces no bars.
func BuildBars(ds *gantt.Dataset, rows []RowPlacement, vp Viewport, scale *timescale.Scale, cfg Config) ([]BarPlacement, []errors.RejectedTask) {
	tasks, rejected := resolveTasks(ds, cfg.Location)
	return buildBars(ds, tasks, rows, vp, scale, cfg), rejected
}

func buildBars(ds *gantt.Dataset, tasks []resolvedTask, rows []RowPlacement, vp Viewport, scale *timescale.Scale, cfg Config) []BarPlacement {
	if vp.Empty {
		return nil
	}
	bars := make([]BarPlacement, 0, len(tasks))
	for _, rt := range tasks {
		row := rows[rt.row]
		x0 := scale.ToX(rt.start, vp.Start)
		x1 := scale.ToX(rt.end, vp.Start)
		bars = append(bars, BarPlacement{
			TaskID:     rt.task.ID,
			ResourceID: row.ResourceID,
			Label:      rt.task.DisplayLabel(),
			Row:        row.Index,
			X:          cfg.LeftGutter + x0,
			Y:          row.Y,
			Width:      math.Max(cfg.MinBarWidth, x1-x0),
			Height:     row.Height,
			Start:      rt.start,
			End:        rt.end,
			Color:      barColor(ds, rt.task),
			BatchID:    rt.task.BatchID,
		})
	}
	return bars
}

// barColor prefers the task's own color and falls back to its batch.
func barColor(ds *gantt.Dataset, t *gantt.Task) string {
	if t.Color != "" {
		return t.Color
	}
	if t.BatchID != "" {
		if b, ok := ds.Batch(t.BatchID); ok {
			return b.Color
		}
	}
	return ""
}
