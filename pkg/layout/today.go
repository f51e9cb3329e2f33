package layout

import (
	"time"

	"github.com/doyel/gantt/pkg/timescale"
)

// TodayX returns the x offset of now, or nil when now lies outside the
// viewport or the viewport is Empty. Both viewport ends are inclusive.
func TodayX(now time.Time, vp Viewport, pixelsPerHour, leftGutter float64) *float64 {
	if !vp.Contains(now) {
		return nil
	}
	x := leftGutter + timescale.Offset(now, vp.Start, pixelsPerHour)
	return &x
}
