package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/doyel/gantt/pkg/layout"
)

const (
	barInset        = 8.0
	barRadius       = 4.0
	labelPad        = 6.0
	gutterTextPad   = 12.0
	charWidthRatio  = 0.6
	hourLabelMinPPH = 40.0
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style     Style
	showHours bool
	showToday bool
}

// WithHours draws hour ticks. Hour labels only appear once an hour is wide
// enough to hold one.
func WithHours() SVGOption { return func(r *svgRenderer) { r.showHours = true } }

// WithoutToday hides the today marker.
func WithoutToday() SVGOption { return func(r *svgRenderer) { r.showToday = false } }

// WithStyle sets the palette.
func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// RenderSVG paints a snapshot. Output is deterministic for a given snapshot
// and options.
func RenderSVG(snap *layout.Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{style: Light, showToday: true}
	for _, opt := range opts {
		opt(&r)
	}
	s := r.style

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f" font-family="%s" font-size="%s">`+"\n",
		num(snap.Width), num(snap.Height), snap.Width, snap.Height, escape(s.FontFamily), num(s.FontSize))
	renderDefs(&buf, s)
	fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
		num(snap.Width), num(snap.Height), s.Background)

	r.renderRows(&buf, snap)
	r.renderHeader(&buf, snap)
	r.renderGrid(&buf, snap)
	r.renderConnectors(&buf, snap)
	r.renderBars(&buf, snap)
	if r.showToday && snap.TodayX != nil {
		fmt.Fprintf(&buf, `  <line class="today" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="2" stroke-dasharray="4 3"/>`+"\n",
			num(*snap.TodayX), num(snap.HeaderHeight), num(*snap.TodayX), num(snap.Height), s.Today)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, s Style) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="arrow" viewBox="0 0 8 8" refX="8" refY="4" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 8 4 L 0 8 z" fill="%s"/></marker>`+"\n", s.Connector)
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderRows(buf *bytes.Buffer, snap *layout.Snapshot) {
	s := r.style
	buf.WriteString(`  <g class="rows">` + "\n")
	for _, row := range snap.Rows {
		fill := s.RowEven
		if row.Index%2 == 1 {
			fill = s.RowOdd
		}
		fmt.Fprintf(buf, `    <rect x="0" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(row.Y), num(snap.Width), num(row.Height), fill)
		fmt.Fprintf(buf, `    <line x1="0" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
			num(row.Y+row.Height), num(snap.Width), num(row.Y+row.Height), s.Divider)
		fmt.Fprintf(buf, `    <text x="%s" y="%s" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
			num(gutterTextPad), num(row.CenterY()), s.Text, escape(fit(row.Name, snap.LeftGutter-2*gutterTextPad, s.FontSize)))
	}
	buf.WriteString("  </g>\n")
	fmt.Fprintf(buf, `  <line class="gutter" x1="%s" y1="0" x2="%s" y2="%s" stroke="%s"/>`+"\n",
		num(snap.LeftGutter), num(snap.LeftGutter), num(snap.Height), s.Divider)
}

func (r *svgRenderer) renderHeader(buf *bytes.Buffer, snap *layout.Snapshot) {
	s := r.style
	fmt.Fprintf(buf, `  <rect class="header" x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
		num(snap.Width), num(snap.HeaderHeight), s.Header)
	fmt.Fprintf(buf, `  <line x1="0" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
		num(snap.HeaderHeight), num(snap.Width), num(snap.HeaderHeight), s.Divider)
}

func (r *svgRenderer) renderGrid(buf *bytes.Buffer, snap *layout.Snapshot) {
	s := r.style
	labelY := snap.HeaderHeight - 10
	if r.showHours {
		showLabels := snap.PixelsPerHour >= hourLabelMinPPH
		buf.WriteString(`  <g class="hours">` + "\n")
		for _, h := range snap.HourLines {
			fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
				num(h.X), num(snap.HeaderHeight), num(h.X), num(snap.Height), s.HourLine)
			if showLabels {
				fmt.Fprintf(buf, `    <text x="%s" y="%s" fill="%s" font-size="%s">%s</text>`+"\n",
					num(h.X+3), num(labelY), s.MutedText, num(s.FontSize-2), escape(h.Label))
			}
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString(`  <g class="days">` + "\n")
	for _, d := range snap.DayLines {
		fmt.Fprintf(buf, `    <line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s"/>`+"\n",
			num(d.X), num(d.X), num(snap.Height), s.DayLine)
		fmt.Fprintf(buf, `    <text x="%s" y="%s" fill="%s">%s</text>`+"\n",
			num(d.X+4), num(labelY), s.Text, escape(d.Label))
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderConnectors(buf *bytes.Buffer, snap *layout.Snapshot) {
	buf.WriteString(`  <g class="connectors" fill="none">` + "\n")
	for _, c := range snap.Connectors {
		fmt.Fprintf(buf, `    <path data-from="%s" data-to="%s" d="%s" stroke="%s" stroke-width="1.5" marker-end="url(#arrow)"/>`+"\n",
			escape(c.From), escape(c.To), c.Path.D(), r.style.Connector)
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderBars(buf *bytes.Buffer, snap *layout.Snapshot) {
	s := r.style
	buf.WriteString(`  <g class="bars">` + "\n")
	for _, b := range snap.Bars {
		fill := b.Color
		if fill == "" {
			fill = s.Bar
		}
		inset := min(barInset, b.Height/4)
		y, h := b.Y+inset, b.Height-2*inset
		fmt.Fprintf(buf, `    <g class="bar" data-task="%s">`+"\n", escape(b.TaskID))
		fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s"><title>%s</title></rect>`+"\n",
			num(b.X), num(y), num(b.Width), num(h), num(barRadius), escape(fill), s.BarStroke,
			escape(fmt.Sprintf("%s (%s - %s)", b.Label, b.Start.Format("Jan 2 15:04"), b.End.Format("Jan 2 15:04"))))
		if label := fit(b.Label, b.Width-2*labelPad, s.FontSize); label != "" {
			fmt.Fprintf(buf, `      <text x="%s" y="%s" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
				num(b.X+labelPad), num(b.CenterY()), s.BarText, escape(label))
		}
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </g>\n")
}

// fit truncates s to the characters that fit in width at fontSize. Labels
// that cannot show at least three characters are dropped.
func fit(s string, width, fontSize float64) string {
	runes := []rune(s)
	n := int(width / (fontSize * charWidthRatio))
	if n >= len(runes) {
		return s
	}
	if n < 3 {
		return ""
	}
	return string(runes[:n-1]) + "…"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
