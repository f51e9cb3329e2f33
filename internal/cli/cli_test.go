package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/cache"
	"github.com/doyel/gantt/pkg/config"
	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	gio "github.com/doyel/gantt/pkg/io"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/render/sink"
)

const testDataset = `{
  "resources": [
    {"id": "M1", "name": "Machine A", "tasks": [
      {"id": "A1", "label": "Batch A1", "start": "2025-08-10T06:00:00", "end": "2025-08-10T18:00:00", "successors": ["B2"]}
    ]},
    {"id": "M2", "name": "Machine B", "tasks": [
      {"id": "B2", "label": "Batch B2", "start": "2025-08-10T20:00:00", "end": "2025-08-11T10:00:00"}
    ]}
  ]
}`

// testCLI returns a CLI that sees no real config and caches under dir.
func testCLI(t *testing.T, dir string) *CLI {
	t.Helper()
	quietSpinners(t)
	work := t.TempDir()
	toml := "[cache]\ndir = " + `"` + filepath.ToSlash(filepath.Join(dir, "cache")) + `"` + "\n"
	if err := os.WriteFile(filepath.Join(work, "gantt.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	c.Loader = config.Loader{
		UserConfigDir: t.TempDir(),
		WorkDir:       work,
		Getenv:        func(string) string { return "" },
	}
	return c
}

func writeDataset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"layout", "visualize", "render", "bounds", "add-task", "view", "serve", "cache", "completion"}
	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil || cmd.Name() != name {
				t.Errorf("command %q not registered", name)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	c := testCLI(t, dir)
	input := writeDataset(t, dir, "plan.json", testDataset)

	output := filepath.Join(dir, "out")
	if err := run(t, c, "render", input, "-f", "svg,json", "-o", output, "--style", "dark", "--hours"); err != nil {
		t.Fatalf("render error: %v", err)
	}

	svg, err := os.ReadFile(output + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(svg), "<svg") || !strings.Contains(string(svg), "#0f172a") {
		t.Error("svg missing or not dark")
	}
	data, err := os.ReadFile(output + ".json")
	if err != nil {
		t.Fatal(err)
	}
	snap, err := sink.ReadJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Rows) != 2 || len(snap.Connectors) != 1 {
		t.Errorf("snapshot has %d rows, %d connectors", len(snap.Rows), len(snap.Connectors))
	}
}

func TestRenderPrecedence(t *testing.T) {
	dir := t.TempDir()
	c := testCLI(t, dir)
	input := writeDataset(t, dir, "plan.json", testDataset)
	output := filepath.Join(dir, "graph.dot")

	if err := run(t, c, "render", input, "-t", "precedence", "-f", "dot", "-o", output, "--no-cache"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	dot, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"A1" -> "B2"`) {
		t.Errorf("dot = %s", dot)
	}
}

func TestRenderInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"-f", "png"}},
		{"unknown style", []string{"--style", "neon"}},
		{"unknown router", []string{"--router", "spline"}},
		{"half viewport", []string{"--start", "2025-08-10"}},
		{"inverted viewport", []string{"--start", "2025-08-12", "--end", "2025-08-10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := testCLI(t, dir)
			input := writeDataset(t, dir, "plan.json", testDataset)
			args := append([]string{"render", input, "--no-cache"}, tt.args...)
			if err := run(t, c, args...); err == nil {
				t.Error("render succeeded, want error")
			}
		})
	}
}

func TestLayoutThenVisualize(t *testing.T) {
	dir := t.TempDir()
	c := testCLI(t, dir)
	input := writeDataset(t, dir, "plan.json", testDataset)

	if err := run(t, c, "layout", input, "--pixels-per-hour", "24", "--router", "elbow"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	layoutPath := filepath.Join(dir, "plan.layout.json")
	data, err := os.ReadFile(layoutPath)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := sink.ReadJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if snap.PixelsPerHour != 24 || snap.Router != "elbow" || len(snap.Bars) != 2 {
		t.Errorf("snapshot = pph %g, router %s, %d bars", snap.PixelsPerHour, snap.Router, len(snap.Bars))
	}

	if err := run(t, testCLI(t, dir), "visualize", layoutPath); err != nil {
		t.Fatalf("visualize error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plan.svg")); err != nil {
		t.Errorf("visualize output missing: %v", err)
	}
}

func TestBoundsRows(t *testing.T) {
	ds, err := gio.DecodeJSON([]byte(testDataset))
	if err != nil {
		t.Fatal(err)
	}
	ds.Resources = append(ds.Resources, gantt.Resource{ID: "M3"})

	rows := boundsRows(ds, time.UTC)
	want := [][]string{
		{"Machine A", "1", "Sun Aug 10 06:00", "Sun Aug 10 18:00", "12h"},
		{"Machine B", "1", "Sun Aug 10 20:00", "Mon Aug 11 10:00", "14h"},
		{"M3", "0", "-", "-", "-"},
		{"all", "2", "Sun Aug 10 06:00", "Mon Aug 11 10:00", "1d 4h"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestFormatSpan(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Minute, "45m"},
		{5 * time.Hour, "5h"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatSpan(tt.d); got != tt.want {
				t.Errorf("formatSpan(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestAddTask(t *testing.T) {
	tests := []struct {
		name     string
		params   addTaskParams
		wantCode errors.Code
	}{
		{
			name:   "appended",
			params: addTaskParams{resource: "M2", id: "B3", label: "Batch B3", start: "2025-08-11T12:00", end: "2025-08-11T20:00", successors: []string{"A1"}},
		},
		{
			name:   "generated id",
			params: addTaskParams{resource: "M1", start: "2025-08-11", end: "2025-08-12"},
		},
		{
			name:     "inverted range",
			params:   addTaskParams{resource: "M1", id: "X", start: "2025-08-12", end: "2025-08-11"},
			wantCode: errors.ErrCodeInvalidTimeRange,
		},
		{
			name:     "unknown resource",
			params:   addTaskParams{resource: "M9", id: "X", start: "2025-08-11", end: "2025-08-12"},
			wantCode: errors.ErrCodeResourceNotFound,
		},
		{
			name:     "bad color",
			params:   addTaskParams{resource: "M1", id: "X", start: "2025-08-11", end: "2025-08-12", color: "not a color!"},
			wantCode: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := gio.DecodeJSON([]byte(testDataset))
			if err != nil {
				t.Fatal(err)
			}
			id, snap, err := addTask(ds, layout.Config{}, tt.params)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("addTask() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("addTask() error: %v", err)
			}
			if id == "" {
				t.Fatal("no id returned")
			}
			if tt.params.id != "" && id != tt.params.id {
				t.Errorf("id = %q, want %q", id, tt.params.id)
			}
			if _, ok := snap.Bar(id); !ok {
				t.Errorf("new task %s has no bar", id)
			}
			if ds.TaskCount() != 3 {
				t.Errorf("TaskCount = %d, want 3", ds.TaskCount())
			}
		})
	}
}

func TestAddTaskCommand(t *testing.T) {
	dir := t.TempDir()
	c := testCLI(t, dir)
	input := writeDataset(t, dir, "plan.json", testDataset)
	output := filepath.Join(dir, "plan.yaml")

	err := run(t, c, "add-task", input, "--resource", "M1", "--id", "A2",
		"--start", "2025-08-11T08:00", "--end", "2025-08-11T16:00", "-o", output)
	if err != nil {
		t.Fatalf("add-task error: %v", err)
	}
	ds, err := gio.ReadDataset(output)
	if err != nil {
		t.Fatal(err)
	}
	if _, owner, ok := ds.Task("A2"); !ok || owner != "M1" {
		t.Errorf("A2 not added to M1 (owner %q)", owner)
	}

	if err := run(t, testCLI(t, dir), "add-task", input, "--start", "2025-08-11", "--end", "2025-08-12"); err == nil {
		t.Error("missing --resource should fail")
	}
}

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		name string
		opts cache.Options
		want string
	}{
		{"file", cache.Options{Dir: "/tmp/gantt"}, "/tmp/gantt"},
		{"redis", cache.Options{Backend: "redis", RedisAddr: "localhost:6379"}, "redis://localhost:6379"},
		{"mongo", cache.Options{Backend: "mongo", MongoURI: "mongodb://u:p@db", MongoDatabase: "gantt"}, "mongo gantt.gantt_cache"},
		{"none", cache.Options{Backend: "none"}, "disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cacheLocation(tt.opts); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeDataset(t, dir, "plan.json", testDataset)
	if err := run(t, testCLI(t, dir), "render", input); err != nil {
		t.Fatal(err)
	}

	entries := func() int {
		n := 0
		_ = filepath.Walk(filepath.Join(dir, "cache"), func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				n++
			}
			return nil
		})
		return n
	}
	if entries() == 0 {
		t.Fatal("render did not populate the cache")
	}
	if err := run(t, testCLI(t, dir), "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if n := entries(); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"bash script", []string{"completion", "bash"}, []string{"gantt"}},
		{"fish script", []string{"completion", "fish"}, []string{"complete -c gantt"}},
		{"router values", []string{cobra.ShellCompRequestCmd, "layout", "--router", ""}, []string{"curved", "elbow"}},
		{"duplicate policies", []string{cobra.ShellCompRequestCmd, "render", "--duplicates", ""}, []string{"last-write-wins", "reject"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testCLI(t, t.TempDir()).RootCommand()
			var out strings.Builder
			root.SetArgs(tt.args)
			root.SetOut(&out)
			root.SetErr(io.Discard)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("execute %v: %v", tt.args, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output does not contain %q", w)
				}
			}
		})
	}

	if err := run(t, testCLI(t, t.TempDir()), "completion", "tcsh"); err == nil {
		t.Error("completion for an unknown shell succeeded")
	}
}
