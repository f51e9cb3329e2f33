package gantt

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/doyel/gantt/pkg/errors"
)

// taskIDLength is the number of hex characters in a generated task id.
const taskIDLength = 12

// Task is a time-bounded unit of work drawn as a bar.
type Task struct {
	ID         string   `json:"id" yaml:"id" toml:"id"`
	Label      string   `json:"label" yaml:"label" toml:"label"`
	Start      Instant  `json:"start" yaml:"start" toml:"start"`
	End        Instant  `json:"end" yaml:"end" toml:"end"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Successors []string `json:"successors,omitempty" yaml:"successors,omitempty" toml:"successors,omitempty"`
	BatchID    string   `json:"batch,omitempty" yaml:"batch,omitempty" toml:"batch,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (t *Task) DisplayLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return t.ID
}

// Resource is a row owning an ordered sequence of tasks.
type Resource struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Tasks []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// DisplayName returns the name if set, otherwise the ID.
func (r *Resource) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Batch is an optional task category providing a fallback color.
type Batch struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
}

// Window is an explicit time window requested by the data source.
type Window struct {
	Start Instant `json:"start" yaml:"start" toml:"start"`
	End   Instant `json:"end" yaml:"end" toml:"end"`
}

// Dataset is the complete input snapshot for one layout pass.
type Dataset struct {
	Resources []Resource `json:"resources" yaml:"resources" toml:"resources"`
	Batches   []Batch    `json:"batches,omitempty" yaml:"batches,omitempty" toml:"batches,omitempty"`
	Viewport  *Window    `json:"viewport,omitempty" yaml:"viewport,omitempty" toml:"viewport,omitempty"`
}

// Resource returns the resource with the given id.
func (d *Dataset) Resource(id string) (*Resource, bool) {
	for i := range d.Resources {
		if d.Resources[i].ID == id {
			return &d.Resources[i], true
		}
	}
	return nil, false
}

// Batch returns the batch with the given id.
func (d *Dataset) Batch(id string) (Batch, bool) {
	for _, b := range d.Batches {
		if b.ID == id {
			return b, true
		}
	}
	return Batch{}, false
}

// Task returns the last task with the given id and the id of its resource.
// The last match wins, consistent with how the layout pass indexes tasks.
func (d *Dataset) Task(id string) (Task, string, bool) {
	var (
		found Task
		owner string
		ok    bool
	)
	for _, r := range d.Resources {
		for _, t := range r.Tasks {
			if t.ID == id {
				found, owner, ok = t, r.ID, true
			}
		}
	}
	return found, owner, ok
}

// TaskCount returns the number of tasks across all resources.
func (d *Dataset) TaskCount() int {
	n := 0
	for _, r := range d.Resources {
		n += len(r.Tasks)
	}
	return n
}

// LinkCount returns the number of declared successor links, resolvable or not.
func (d *Dataset) LinkCount() int {
	n := 0
	for _, r := range d.Resources {
		for _, t := range r.Tasks {
			n += len(t.Successors)
		}
	}
	return n
}

// AddTask appends t to the resource with the given id and returns the
// task's identifier. A blank identifier is replaced by [NewTaskID]; the
// generated id is not checked against existing ones.
//
// AddTask fails with errors.ErrCodeResourceNotFound, leaving the dataset
// unchanged, when no resource has that id. It does not trigger a layout.
func (d *Dataset) AddTask(resourceID string, t Task) (string, error) {
	r, ok := d.Resource(resourceID)
	if !ok {
		return "", errors.New(errors.ErrCodeResourceNotFound, "no resource with id %q", resourceID)
	}
	if strings.TrimSpace(t.ID) == "" {
		t.ID = NewTaskID()
	}
	t.Successors = slices.Clone(t.Successors)
	r.Tasks = append(r.Tasks, t)
	return t.ID, nil
}

// RemoveTask deletes every task with the given id and reports whether any
// was removed. Successor references to it are left in place; they become
// dangling and are skipped by the layout pass.
func (d *Dataset) RemoveTask(id string) bool {
	removed := false
	for i := range d.Resources {
		r := &d.Resources[i]
		before := len(r.Tasks)
		r.Tasks = slices.DeleteFunc(r.Tasks, func(t Task) bool { return t.ID == id })
		removed = removed || len(r.Tasks) != before
	}
	return removed
}

// DuplicateTaskIDs returns identifiers used by more than one task, in
// first-seen order.
func (d *Dataset) DuplicateTaskIDs() []string {
	seen := make(map[string]int)
	var dups []string
	for _, r := range d.Resources {
		for _, t := range r.Tasks {
			seen[t.ID]++
			if seen[t.ID] == 2 {
				dups = append(dups, t.ID)
			}
		}
	}
	return dups
}

// Validate performs structural checks on identifiers and colors.
// Time ranges are not checked here; the layout pass rejects bad ranges
// task by task.
func (d *Dataset) Validate() error {
	for _, b := range d.Batches {
		if err := errors.ValidateIdentifier("batch", b.ID); err != nil {
			return err
		}
		if err := errors.ValidateColor(b.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "batch %s", b.ID)
		}
	}
	for _, r := range d.Resources {
		if err := errors.ValidateIdentifier("resource", r.ID); err != nil {
			return err
		}
		for _, t := range r.Tasks {
			if err := errors.ValidateIdentifier("task", t.ID); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDataset, err, "resource %s", r.ID)
			}
			if err := errors.ValidateColor(t.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDataset, err, "task %s", t.ID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Resources: make([]Resource, len(d.Resources)),
		Batches:   slices.Clone(d.Batches),
	}
	if d.Viewport != nil {
		w := *d.Viewport
		out.Viewport = &w
	}
	for i, r := range d.Resources {
		tasks := make([]Task, len(r.Tasks))
		for j, t := range r.Tasks {
			t.Successors = slices.Clone(t.Successors)
			tasks[j] = t
		}
		out.Resources[i] = Resource{ID: r.ID, Name: r.Name, Tasks: tasks}
	}
	return out
}

// NewTaskID returns a short random identifier for a task.
func NewTaskID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:taskIDLength]
}
