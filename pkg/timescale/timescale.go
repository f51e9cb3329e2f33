// Package timescale maps time to horizontal pixels at a fixed density.
//
// A [Scale] holds a single value, pixels per hour. Positions are linear in
// time relative to an origin, usually the viewport start:
//
//	s := timescale.New(12)
//	x := s.ToX(taskStart, viewStart) // 12px for every hour after viewStart
//
// Zooming multiplies the density by [DefaultZoomFactor], rounds to whole
// pixels and clamps to the scale's bounds. Callers decide when to recompute
// anything that depends on the scale.
package timescale

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultPixelsPerHour    = 12
	DefaultMinPixelsPerHour = 1
	DefaultMaxPixelsPerHour = 200
	DefaultZoomFactor       = 1.25
)

// Scale is a linear time-to-pixel mapping. The zero value is not usable;
// construct one with [New] or [NewWithBounds].
type Scale struct {
	pixelsPerHour float64
	min, max      float64
	factor        float64
}

// New returns a scale with the default bounds and zoom factor.
// The density is clamped into those bounds.
func New(pixelsPerHour float64) *Scale {
	s, _ := NewWithBounds(pixelsPerHour, DefaultMinPixelsPerHour, DefaultMaxPixelsPerHour, DefaultZoomFactor)
	return s
}

// NewWithBounds returns a scale with custom bounds and zoom factor.
func NewWithBounds(pixelsPerHour, minPPH, maxPPH, factor float64) (*Scale, error) {
	if minPPH <= 0 || maxPPH < minPPH {
		return nil, fmt.Errorf("invalid pixels-per-hour bounds [%g, %g]", minPPH, maxPPH)
	}
	if factor <= 1 {
		return nil, fmt.Errorf("zoom factor must be greater than 1, got %g", factor)
	}
	s := &Scale{min: minPPH, max: maxPPH, factor: factor}
	s.SetHoursPerCell(pixelsPerHour)
	return s, nil
}

// PixelsPerHour returns the current density.
func (s *Scale) PixelsPerHour() float64 { return s.pixelsPerHour }

// Bounds returns the minimum and maximum density.
func (s *Scale) Bounds() (float64, float64) { return s.min, s.max }

// ToX returns the horizontal offset of t from origin in pixels.
// Instants before origin map to negative offsets.
func (s *Scale) ToX(t, origin time.Time) float64 {
	return Offset(t, origin, s.pixelsPerHour)
}

// Offset is ToX for a fixed density without a Scale.
func Offset(t, origin time.Time, pixelsPerHour float64) float64 {
	return Hours(t, origin) * pixelsPerHour
}

// Hours returns the hours from origin to t. Unlike t.Sub(origin).Hours()
// it does not saturate for spans beyond about 292 years.
func Hours(t, origin time.Time) float64 {
	secs := t.Unix() - origin.Unix()
	nanos := t.Nanosecond() - origin.Nanosecond()
	return float64(secs)/3600 + float64(nanos)/3.6e12
}

// Width returns the pixel width of a duration.
func (s *Scale) Width(d time.Duration) float64 {
	return d.Hours() * s.pixelsPerHour
}

// ZoomIn increases the density by the zoom factor and returns the new value.
func (s *Scale) ZoomIn() float64 {
	return s.zoom(s.pixelsPerHour*s.factor, 1)
}

// ZoomOut decreases the density by the zoom factor and returns the new value.
func (s *Scale) ZoomOut() float64 {
	return s.zoom(s.pixelsPerHour/s.factor, -1)
}

// zoom rounds next to whole pixels. At small densities rounding can land
// on the current value, in which case the density moves one pixel in dir.
func (s *Scale) zoom(next, dir float64) float64 {
	rounded := math.Round(next)
	if rounded == s.pixelsPerHour {
		rounded += dir
	}
	s.pixelsPerHour = s.clamp(rounded)
	return s.pixelsPerHour
}

// SetHoursPerCell sets the density directly, clamped to the bounds.
// Non-finite values leave the scale unchanged.
func (s *Scale) SetHoursPerCell(pixelsPerHour float64) float64 {
	if math.IsNaN(pixelsPerHour) || math.IsInf(pixelsPerHour, 0) {
		if s.pixelsPerHour == 0 {
			s.pixelsPerHour = s.clamp(DefaultPixelsPerHour)
		}
		return s.pixelsPerHour
	}
	s.pixelsPerHour = s.clamp(pixelsPerHour)
	return s.pixelsPerHour
}

func (s *Scale) clamp(v float64) float64 {
	return math.Min(s.max, math.Max(s.min, v))
}
