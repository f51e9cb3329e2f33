package sink

import (
	"fmt"
	"strings"
)

// Style names.
const (
	StyleLight = "light"
	StyleDark  = "dark"
)

// Style is the palette and typography of a rendered chart.
type Style struct {
	Name       string
	FontFamily string
	FontSize   float64

	Background string
	Header     string
	RowEven    string
	RowOdd     string
	Divider    string
	DayLine    string
	HourLine   string
	Text       string
	MutedText  string
	Bar        string
	BarStroke  string
	BarText    string
	Connector  string
	Today      string
}

// Light is the default style.
var Light = Style{
	Name:       StyleLight,
	FontFamily: "system-ui, -apple-system, Segoe UI, sans-serif",
	FontSize:   12,
	Background: "#ffffff",
	Header:     "#f8fafc",
	RowEven:    "#ffffff",
	RowOdd:     "#f8fafc",
	Divider:    "#cbd5e1",
	DayLine:    "#94a3b8",
	HourLine:   "#e2e8f0",
	Text:       "#0f172a",
	MutedText:  "#64748b",
	Bar:        "#60a5fa",
	BarStroke:  "#1e3a8a",
	BarText:    "#0f172a",
	Connector:  "#475569",
	Today:      "#ef4444",
}

// Dark suits dark page backgrounds.
var Dark = Style{
	Name:       StyleDark,
	FontFamily: Light.FontFamily,
	FontSize:   12,
	Background: "#0f172a",
	Header:     "#1e293b",
	RowEven:    "#0f172a",
	RowOdd:     "#162033",
	Divider:    "#334155",
	DayLine:    "#475569",
	HourLine:   "#1e293b",
	Text:       "#e2e8f0",
	MutedText:  "#94a3b8",
	Bar:        "#3b82f6",
	BarStroke:  "#bfdbfe",
	BarText:    "#f8fafc",
	Connector:  "#cbd5e1",
	Today:      "#f87171",
}

var stylesByName = map[string]Style{
	StyleLight: Light,
	StyleDark:  Dark,
}

// StyleByName looks a style up case-insensitively. "" is Light.
func StyleByName(name string) (Style, error) {
	if name == "" {
		return Light, nil
	}
	s, ok := stylesByName[strings.ToLower(name)]
	if !ok {
		return Style{}, fmt.Errorf("unknown style %q (must be one of: %s)", name, strings.Join(StyleNames(), ", "))
	}
	return s, nil
}

// StyleNames lists the built-in styles.
func StyleNames() []string { return []string{StyleLight, StyleDark} }
