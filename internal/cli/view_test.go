package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	gio "github.com/doyel/gantt/pkg/io"
	"github.com/doyel/gantt/pkg/layout"
)

func newTestViewModel(t *testing.T) viewModel {
	t.Helper()
	ds, err := gio.DecodeJSON([]byte(testDataset))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 8, 10, 19, 0, 0, 0, time.UTC)
	engine, err := layout.New(ds, layout.Config{}, layout.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	m := newViewModel(engine, "plan.json")
	if m.snap == nil {
		t.Fatalf("no initial snapshot: %v", m.err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m viewModel, s string) (viewModel, tea.Cmd) {
	next, cmd := m.Update(key(s))
	return next.(viewModel), cmd
}

func TestViewZoom(t *testing.T) {
	m := newTestViewModel(t)
	before := m.snap.PixelsPerHour

	m, _ = press(m, "+")
	if m.snap.PixelsPerHour <= before {
		t.Errorf("zoom in: %g px/h, want more than %g", m.snap.PixelsPerHour, before)
	}
	m, _ = press(m, "-")
	m, _ = press(m, "-")
	if m.snap.PixelsPerHour >= before {
		t.Errorf("zoom out: %g px/h, want less than %g", m.snap.PixelsPerHour, before)
	}
	m, _ = press(m, "0")
	if m.snap.PixelsPerHour != before {
		t.Errorf("fit: %g px/h, want %g", m.snap.PixelsPerHour, before)
	}
}

func TestViewPan(t *testing.T) {
	tests := []struct {
		key string
		dir int
	}{
		{"right", 1},
		{"l", 1},
		{"left", -1},
		{"h", -1},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := newTestViewModel(t)
			vp := m.snap.Viewport
			m, _ = press(m, tt.key)

			step := vp.Duration() / 4
			if step < time.Hour {
				step = time.Hour
			}
			want := vp.Start.Add(time.Duration(tt.dir) * step)
			if !m.snap.Viewport.Start.Equal(want) {
				t.Errorf("start = %v, want %v", m.snap.Viewport.Start, want)
			}
			if m.snap.Viewport.Duration() != vp.Duration() {
				t.Errorf("pan changed the viewport width")
			}

			m, _ = press(m, "0")
			if !m.snap.Viewport.Start.Equal(vp.Start) {
				t.Errorf("fit start = %v, want %v", m.snap.Viewport.Start, vp.Start)
			}
		})
	}
}

func TestViewQuit(t *testing.T) {
	_, cmd := press(newTestViewModel(t), "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewIgnoresOtherKeys(t *testing.T) {
	m := newTestViewModel(t)
	snap := m.snap
	m, cmd := press(m, "x")
	if cmd != nil || m.snap != snap {
		t.Error("unbound key changed the model")
	}
}

func TestViewRender(t *testing.T) {
	m := newTestViewModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	m = next.(viewModel)

	out := m.View()
	for _, want := range []string{"plan.json", "Machine A", "Machine B", "px/h"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRowCells(t *testing.T) {
	m := newTestViewModel(t)
	snap := m.snap

	for row := range snap.Rows {
		cells := rowCells(snap, row, 200)
		bars := 0
		for _, c := range cells {
			if c.bar >= 0 {
				if snap.Bars[c.bar].Row != row {
					t.Errorf("row %d draws bar %s of row %d", row, snap.Bars[c.bar].TaskID, snap.Bars[c.bar].Row)
				}
				bars++
			}
		}
		if bars == 0 {
			t.Errorf("row %d has no bar cells", row)
		}
	}
}

func TestColumn(t *testing.T) {
	snap := &layout.Snapshot{LeftGutter: 100}
	tests := []struct {
		x    float64
		want int
	}{
		{100, 0},
		{107.9, 0},
		{108, 1},
		{92, -1},
	}
	for _, tt := range tests {
		if got := column(snap, tt.x); got != tt.want {
			t.Errorf("column(%g) = %d, want %d", tt.x, got, tt.want)
		}
	}
}
