// Package route computes connector geometry between two task bars.
//
// A [Router] receives two anchors, the trailing edge of the source bar and
// the leading edge of the target bar, each at its row's vertical center,
// and returns a [Path]. Two strategies implement the same contract:
//
//   - [Curved] (default): a cubic S-curve whose control points sit level
//     with their anchors, offset horizontally by max(24, dx/2). The offset
//     is signed, so a target behind its source keeps both control points
//     24px from their anchors.
//   - [Elbow]: a Manhattan polyline with one vertical jog at the
//     horizontal midpoint.
//
// Both draw a single straight segment when the anchors share a row center.
// Targets may lie above or below the source and before or after it in time.
package route

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Strategy names accepted by [ByName].
const (
	NameCurved = "curved"
	NameElbow  = "elbow"
)

// DefaultName is the strategy used when none is configured.
const DefaultName = NameCurved

// MinCurveOffset is the smallest horizontal control-point offset of a curve.
const MinCurveOffset = 24.0

// Kind identifies how a path's points are interpreted.
type Kind string

const (
	// KindLine is a straight segment: two points.
	KindLine Kind = "line"
	// KindPolyline is a sequence of straight segments.
	KindPolyline Kind = "polyline"
	// KindCubic is one cubic Bézier: start, control 1, control 2, end.
	KindCubic Kind = "cubic"
)

// Point is a position in layout pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Anchor is a connector endpoint.
type Anchor = Point

// Path is connector geometry. Consumers that only draw SVG can use [Path.D].
type Path struct {
	Kind   Kind    `json:"kind"`
	Points []Point `json:"points"`
}

// Start returns the first point of the path.
func (p Path) Start() Point { return p.Points[0] }

// End returns the last point of the path.
func (p Path) End() Point { return p.Points[len(p.Points)-1] }

// D returns the path as SVG path data.
func (p Path) D() string {
	if len(p.Points) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, p.Points[0])
	switch p.Kind {
	case KindCubic:
		if len(p.Points) == 4 {
			b.WriteString(" C ")
			writePoint(&b, p.Points[1])
			b.WriteString(", ")
			writePoint(&b, p.Points[2])
			b.WriteString(", ")
			writePoint(&b, p.Points[3])
			return b.String()
		}
		fallthrough
	default:
		for _, pt := range p.Points[1:] {
			b.WriteString(" L ")
			writePoint(&b, pt)
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(formatCoord(p.X))
	b.WriteByte(' ')
	b.WriteString(formatCoord(p.Y))
}

// formatCoord prints at most two decimals without trailing zeros.
func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Router computes the path from a source anchor to a target anchor.
type Router interface {
	Name() string
	Route(from, to Anchor) Path
}

// Curved routes cross-row connectors as a cubic S-curve.
type Curved struct{}

// Name implements Router.
func (Curved) Name() string { return NameCurved }

// Route implements Router.
func (Curved) Route(from, to Anchor) Path {
	if from.Y == to.Y {
		return straight(from, to)
	}
	dx := math.Max(MinCurveOffset, (to.X-from.X)/2)
	return Path{
		Kind: KindCubic,
		Points: []Point{
			from,
			{X: from.X + dx, Y: from.Y},
			{X: to.X - dx, Y: to.Y},
			to,
		},
	}
}

// Elbow routes cross-row connectors as a four-point Manhattan polyline.
type Elbow struct{}

// Name implements Router.
func (Elbow) Name() string { return NameElbow }

// Route implements Router.
func (Elbow) Route(from, to Anchor) Path {
	if from.Y == to.Y {
		return straight(from, to)
	}
	mid := (from.X + to.X) / 2
	return Path{
		Kind: KindPolyline,
		Points: []Point{
			from,
			{X: mid, Y: from.Y},
			{X: mid, Y: to.Y},
			to,
		},
	}
}

func straight(from, to Anchor) Path {
	return Path{Kind: KindLine, Points: []Point{from, to}}
}

// ByName returns the strategy with the given name. An empty name selects
// the default.
func ByName(name string) (Router, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameCurved:
		return Curved{}, nil
	case NameElbow:
		return Elbow{}, nil
	default:
		return nil, fmt.Errorf("unknown router: %q (must be one of: curved, elbow)", name)
	}
}

// Names lists the available strategies.
func Names() []string { return []string{NameCurved, NameElbow} }
