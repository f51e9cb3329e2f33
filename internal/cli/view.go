package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/pipeline"
)

const (
	// cellPixels is the snapshot width of one terminal column.
	cellPixels = 8.0
	// nameWidth is the width of the resource name column.
	nameWidth = 16

	viewTimeLayout = "Jan 2 15:04"
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "view [dataset]",
		Short: "Browse a chart in the terminal",
		Long: `Browse a chart in the terminal.

Keys:
  + / -      zoom in / out
  ← / →      pan by a quarter of the viewport
  0          fit every task and reset the zoom
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, c.Config)
			cfg, err := c.Config.LayoutConfig()
			if err != nil {
				return err
			}
			vp, err := lf.viewport(cfg.WithDefaults().Location)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), args[0], cfg, vp)
		},
	}
	lf.register(cmd, true)

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, cfg layout.Config, vp *layout.Viewport) error {
	ds, err := pipeline.NewRunner(nil, nil, c.Logger).Parse(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}
	var opts []layout.Option
	if vp != nil {
		opts = append(opts, layout.WithViewport(*vp))
	}
	engine, err := layout.New(ds, cfg, opts...)
	if err != nil {
		return err
	}

	m := newViewModel(engine, input)
	if m.snap == nil {
		return m.err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// viewModel - Interactive chart
// =============================================================================

var (
	styleViewGrid  = lipgloss.NewStyle().Foreground(colorDim)
	styleViewToday = lipgloss.NewStyle().Foreground(colorRed)
	styleViewName  = lipgloss.NewStyle().Foreground(colorWhite).Width(nameWidth).MaxWidth(nameWidth)
	styleViewError = lipgloss.NewStyle().Foreground(colorRed)
)

// viewModel hosts a layout engine. Every key that changes the zoom or the
// viewport is followed by an explicit Recompute.
type viewModel struct {
	engine *layout.Engine
	snap   *layout.Snapshot
	err    error
	title  string
	width  int
	height int
}

func newViewModel(engine *layout.Engine, title string) viewModel {
	m := viewModel{engine: engine, title: title, width: 100, height: 30}
	m.recompute()
	return m
}

// recompute refreshes the snapshot. A structural failure keeps the last
// good snapshot on screen and shows the error.
func (m *viewModel) recompute() {
	snap, err := m.engine.Recompute()
	var rejected *errors.RejectedTasksError
	if err != nil && !stderrors.As(err, &rejected) {
		m.err = err
	} else {
		m.err = nil
	}
	if snap != nil {
		m.snap = snap
	}
}

// pan moves the viewport by a quarter of its width, at least one hour.
func (m *viewModel) pan(dir int) {
	vp, err := m.engine.Viewport()
	if err != nil || vp.Empty {
		return
	}
	step := vp.Duration() / 4
	if step < time.Hour {
		step = time.Hour
	}
	shifted := vp.Shift(time.Duration(dir) * step)
	m.engine.SetViewport(&shifted)
}

// fit returns to the window over every valid task at the configured zoom.
func (m *viewModel) fit() {
	if vp := m.engine.MinMaxDates(); !vp.Empty {
		m.engine.SetViewport(&vp)
	} else {
		m.engine.SetViewport(nil)
	}
	m.engine.SetHoursPerCell(m.engine.Config().PixelsPerHour)
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "+", "=":
			m.engine.ZoomIn()
		case "-", "_":
			m.engine.ZoomOut()
		case "left", "h":
			m.pan(-1)
		case "right", "l":
			m.pan(1)
		case "0":
			m.fit()
		default:
			return m, nil
		}
		m.recompute()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(m.summary()))
	b.WriteString("\n\n")

	if m.snap != nil {
		cols := max(m.width-nameWidth-1, 10)
		b.WriteString(strings.Repeat(" ", nameWidth+1))
		b.WriteString(styleViewGrid.Render(dayHeader(m.snap, cols)))
		b.WriteString("\n")

		visible := max(m.height-7, 1)
		for i, row := range m.snap.Rows {
			if i >= visible {
				b.WriteString(StyleDim.Render(fmt.Sprintf("  … %d more", len(m.snap.Rows)-i)))
				b.WriteString("\n")
				break
			}
			b.WriteString(styleViewName.Render(row.Name))
			b.WriteString(" ")
			b.WriteString(renderCells(m.snap, rowCells(m.snap, i, cols)))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleViewError.Render(errors.UserMessage(m.err)))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("+/- zoom  ←/→ pan  0 fit  q quit"))
	return b.String()
}

func (m viewModel) summary() string {
	if m.snap == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("%g px/h", m.snap.PixelsPerHour)}
	if vp := m.snap.Viewport; !vp.Empty {
		parts = append(parts, vp.Start.Format(viewTimeLayout)+" - "+vp.End.Format(viewTimeLayout))
	}
	if n := len(m.snap.Rejected); n > 0 {
		parts = append(parts, plural(n, "rejected task"))
	}
	return strings.Join(parts, " · ")
}

// =============================================================================
// Cells
// =============================================================================

// cell is one terminal column of a row. bar indexes Snapshot.Bars; the
// negative kinds mark grid and today columns.
type cell struct {
	ch  rune
	bar int
}

const (
	cellEmpty = -1
	cellGrid  = -2
	cellToday = -3
)

// column maps a snapshot x coordinate to a terminal column.
func column(snap *layout.Snapshot, x float64) int {
	return int(math.Floor((x - snap.LeftGutter) / cellPixels))
}

// rowCells draws row i: day lines, then bars with their labels, then the
// today marker on top of empty columns.
func rowCells(snap *layout.Snapshot, row, cols int) []cell {
	cells := make([]cell, cols)
	for i := range cells {
		cells[i] = cell{ch: ' ', bar: cellEmpty}
	}
	for _, d := range snap.DayLines {
		if c := column(snap, d.X); c >= 0 && c < cols {
			cells[c] = cell{ch: '┊', bar: cellGrid}
		}
	}

	for bi, bar := range snap.Bars {
		if bar.Row != row {
			continue
		}
		c0 := column(snap, bar.X)
		c1 := int(math.Ceil((bar.X + bar.Width - snap.LeftGutter) / cellPixels))
		if c1 <= c0 {
			c1 = c0 + 1
		}
		label := []rune(bar.Label)
		for c := max(c0, 0); c < min(c1, cols); c++ {
			ch := ' '
			if k := c - c0 - 1; k >= 0 && k < len(label) && len(label) <= c1-c0-2 {
				ch = label[k]
			}
			cells[c] = cell{ch: ch, bar: bi}
		}
	}

	if snap.TodayX != nil {
		if c := column(snap, *snap.TodayX); c >= 0 && c < cols && cells[c].bar < 0 {
			cells[c] = cell{ch: '│', bar: cellToday}
		}
	}
	return cells
}

// renderCells styles runs of cells that share a kind.
func renderCells(snap *layout.Snapshot, cells []cell) string {
	var b strings.Builder
	for start := 0; start < len(cells); {
		end := start + 1
		for end < len(cells) && cells[end].bar == cells[start].bar {
			end++
		}
		run := make([]rune, 0, end-start)
		for _, c := range cells[start:end] {
			run = append(run, c.ch)
		}
		b.WriteString(cellStyle(snap, cells[start].bar).Render(string(run)))
		start = end
	}
	return b.String()
}

var barPalette = []lipgloss.Color{"75", "36", "220", "170", "114"}

// cellStyle colors bars with their task color, or from barPalette when
// the task has none.
func cellStyle(snap *layout.Snapshot, kind int) lipgloss.Style {
	switch kind {
	case cellEmpty:
		return lipgloss.NewStyle()
	case cellGrid:
		return styleViewGrid
	case cellToday:
		return styleViewToday
	default:
		bg := barPalette[kind%len(barPalette)]
		if c := snap.Bars[kind].Color; strings.HasPrefix(c, "#") {
			bg = lipgloss.Color(c)
		}
		return lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("16"))
	}
}

// dayHeader places each day label at its column, skipping labels that
// would overlap the previous one.
func dayHeader(snap *layout.Snapshot, cols int) string {
	line := []rune(strings.Repeat(" ", cols))
	next := 0
	for _, d := range snap.DayLines {
		c := column(snap, d.X)
		label := []rune(d.Label)
		if c < next || c < 0 || c+len(label) > cols {
			continue
		}
		copy(line[c:], label)
		next = c + len(label) + 1
	}
	return string(line)
}
