package layout

import (
	"time"

	"github.com/doyel/gantt/pkg/timescale"
)

const (
	dayLabelLayout  = "Jan 2"
	hourLabelLayout = "15:04"

	// maxGridTicks bounds each tick series. An auto-fit window over tasks
	// centuries apart would otherwise produce millions of lines.
	maxGridTicks = 100_000
)

// GridLine is one vertical tick.
type GridLine struct {
	X     float64   `json:"x"`
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// BuildGrid returns day ticks, starting at midnight of the day containing
// the viewport start, and hour ticks, starting at the top of the hour at or
// before it. Both step by a fixed duration and include a tick that lands
// exactly on the viewport end. Boundaries and labels use cfg.Location.
//
// An Empty viewport has no ticks, and a series longer than maxGridTicks is
// left out entirely.
func BuildGrid(vp Viewport, scale *timescale.Scale, cfg Config) (days, hours []GridLine) {
	if vp.Empty {
		return nil, nil
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	s := vp.Start.In(loc)

	firstDay := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	days = ticks(firstDay, vp, 24*time.Hour, dayLabelLayout, scale, cfg.LeftGutter, loc)

	firstHour := time.Date(s.Year(), s.Month(), s.Day(), s.Hour(), 0, 0, 0, loc)
	if firstHour.After(s) {
		// Zone transitions can normalize the hour forward.
		firstHour = firstHour.Add(-time.Hour)
	}
	hours = ticks(firstHour, vp, time.Hour, hourLabelLayout, scale, cfg.LeftGutter, loc)
	return days, hours
}

func ticks(from time.Time, vp Viewport, step time.Duration, layout string, scale *timescale.Scale, gutter float64, loc *time.Location) []GridLine {
	n := int(timescale.Hours(vp.End, from)/step.Hours()) + 1
	if n > maxGridTicks {
		return nil
	}
	out := make([]GridLine, 0, max(n, 0))
	for t := from; !t.After(vp.End); t = t.Add(step) {
		out = append(out, GridLine{
			X:     gutter + scale.ToX(t, vp.Start),
			Label: t.In(loc).Format(layout),
			At:    t,
		})
	}
	return out
}
