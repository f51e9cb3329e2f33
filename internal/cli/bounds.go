package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/pipeline"
)

const boundsTimeLayout = "Mon Jan 2 15:04"

// boundsCommand creates the bounds command that prints per-resource spans.
func (c *CLI) boundsCommand() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "bounds [dataset]",
		Short: "Print the time span of every resource",
		Long: `Print the time span of every resource.

The last row is the auto-fit window over all tasks, the viewport used when
the dataset names none. Tasks with an invalid range are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, c.Config)
			cfg, err := c.Config.LayoutConfig()
			if err != nil {
				return err
			}
			return c.runBounds(cmd.Context(), args[0], cfg.WithDefaults().Location)
		},
	}
	cmd.Flags().StringVar(&lf.timezone, "timezone", c.Config.Layout.Timezone, "time zone for instants without an offset")

	return cmd
}

func (c *CLI) runBounds(ctx context.Context, input string, loc *time.Location) error {
	ds, err := pipeline.NewRunner(nil, nil, c.Logger).Parse(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := boundsRows(ds, loc)
	last := len(rows) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Resource", "Tasks", "Start", "End", "Span").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == last:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			case col == 1 || col == 4:
				return lipgloss.NewStyle().Foreground(colorGray)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		})

	fmt.Println(t.Render())
	return nil
}

// boundsRows returns one row per resource followed by the overall window.
func boundsRows(ds *gantt.Dataset, loc *time.Location) [][]string {
	rows := make([][]string, 0, len(ds.Resources)+1)
	for _, r := range ds.Resources {
		single := &gantt.Dataset{Resources: []gantt.Resource{r}}
		rows = append(rows, boundsRow(r.DisplayName(), len(r.Tasks), layout.MinMaxDates(single, loc), loc))
	}
	all := layout.MinMaxDates(ds, loc)
	return append(rows, boundsRow("all", ds.TaskCount(), all, loc))
}

func boundsRow(name string, tasks int, vp layout.Viewport, loc *time.Location) []string {
	if vp.Empty {
		return []string{name, fmt.Sprint(tasks), "-", "-", "-"}
	}
	return []string{
		name,
		fmt.Sprint(tasks),
		vp.Start.In(loc).Format(boundsTimeLayout),
		vp.End.In(loc).Format(boundsTimeLayout),
		formatSpan(vp.Duration()),
	}
}

// formatSpan renders d as days and hours ("1d 4h", "45m").
func formatSpan(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Round(time.Minute).Minutes()))
	}
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)).Hours())
	switch {
	case days == 0:
		return fmt.Sprintf("%dh", hours)
	case hours == 0:
		return fmt.Sprintf("%dd", days)
	default:
		return fmt.Sprintf("%dd %dh", days, hours)
	}
}
