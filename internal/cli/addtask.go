package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	gio "github.com/doyel/gantt/pkg/io"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/pipeline"
)

// addTaskParams are the fields of the task being added.
type addTaskParams struct {
	resource   string
	id         string
	label      string
	start      string
	end        string
	color      string
	batch      string
	successors []string
	output     string
}

// addTaskCommand creates the add-task command.
func (c *CLI) addTaskCommand() *cobra.Command {
	var p addTaskParams

	cmd := &cobra.Command{
		Use:   "add-task [dataset]",
		Short: "Append a task to a dataset file",
		Long: `Append a task to a dataset file.

The task is added to the end of the resource's list, then the layout is
recomputed to check it. A task whose end precedes its start is refused and
the file is left untouched. Without --id a random identifier is assigned.`,
		Example: `  gantt add-task plan.json --resource M2 --label "Batch B3" \
    --start 2025-08-11T12:00 --end 2025-08-11T20:00 --successor C1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config.LayoutConfig()
			if err != nil {
				return err
			}
			return c.runAddTask(cmd.Context(), args[0], cfg, p)
		},
	}

	cmd.Flags().StringVar(&p.resource, "resource", "", "resource id to add the task to")
	cmd.Flags().StringVar(&p.id, "id", "", "task id (default: generated)")
	cmd.Flags().StringVar(&p.label, "label", "", "task label")
	cmd.Flags().StringVar(&p.start, "start", "", "start instant")
	cmd.Flags().StringVar(&p.end, "end", "", "end instant")
	cmd.Flags().StringVar(&p.color, "color", "", "bar color (#rrggbb)")
	cmd.Flags().StringVar(&p.batch, "batch", "", "batch id")
	cmd.Flags().StringSliceVar(&p.successors, "successor", nil, "successor task id (repeatable)")
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output file (default: overwrite the input)")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func (c *CLI) runAddTask(ctx context.Context, input string, cfg layout.Config, p addTaskParams) error {
	ds, err := pipeline.NewRunner(nil, nil, c.Logger).Parse(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	prog := newProgress(loggerFromContext(ctx))
	id, snap, err := addTask(ds, cfg, p)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Recomputed %s", plural(len(snap.Bars), "bar")))

	output := p.output
	if output == "" {
		output = input
	}
	if err := gio.WriteDataset(ds, output); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	printSuccess("Added task %s to %s", StyleHighlight.Render(id), p.resource)
	printFile(output)
	printStats(len(snap.Rows), len(snap.Bars), len(snap.Connectors), false)
	printRejected(snap.Rejected)
	return nil
}

// addTask appends the task through a layout engine and recomputes. It
// fails when the new task itself is rejected; rejections of tasks that
// were already in the dataset are only reported.
func addTask(ds *gantt.Dataset, cfg layout.Config, p addTaskParams) (string, *layout.Snapshot, error) {
	task := gantt.Task{
		ID:         p.id,
		Label:      p.label,
		Start:      gantt.ParseInstant(p.start),
		End:        gantt.ParseInstant(p.end),
		Color:      p.color,
		BatchID:    p.batch,
		Successors: p.successors,
	}
	if task.ID != "" {
		if err := errors.ValidateIdentifier("task", task.ID); err != nil {
			return "", nil, err
		}
	}
	if err := errors.ValidateColor(task.Color); err != nil {
		return "", nil, err
	}

	engine, err := layout.New(ds, cfg)
	if err != nil {
		return "", nil, err
	}
	id, err := engine.AddTask(p.resource, task)
	if err != nil {
		return "", nil, err
	}

	snap, err := engine.Recompute()
	var rejected *errors.RejectedTasksError
	if err != nil && !stderrors.As(err, &rejected) {
		return "", nil, err
	}
	if rejected != nil {
		i := slices.IndexFunc(rejected.Tasks, func(t errors.RejectedTask) bool { return t.TaskID == id })
		if i >= 0 {
			return "", nil, errors.New(errors.ErrCodeInvalidTimeRange, "task %s: %s", id, rejected.Tasks[i].Reason)
		}
	}
	return id, snap, nil
}
