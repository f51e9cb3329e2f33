package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/doyel/gantt/pkg/cache"
	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/layout/route"
	"github.com/doyel/gantt/pkg/observability"
)

// memCache is an in-memory cache that counts reads and writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
	ttls []time.Duration
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.ttls = append(c.ttls, ttl)
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func clock(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func dataset() *gantt.Dataset {
	return &gantt.Dataset{Resources: []gantt.Resource{
		{ID: "M1", Name: "Machine A", Tasks: []gantt.Task{
			{ID: "A1", Start: gantt.ParseInstant("2025-08-10T06:00"), End: gantt.ParseInstant("2025-08-10T18:00"), Successors: []string{"B2"}},
		}},
		{ID: "M2", Name: "Machine B", Tasks: []gantt.Task{
			{ID: "B2", Start: gantt.ParseInstant("2025-08-10T20:00"), End: gantt.ParseInstant("2025-08-11T10:00")},
		}},
	}}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		viz     string
		format  string
		wantErr errors.Code
	}{
		{VizTypeGantt, "svg", ""},
		{VizTypeGantt, "json", ""},
		{VizTypeGantt, "dot", errors.ErrCodeInvalidFormat},
		{VizTypePrecedence, "svg", ""},
		{VizTypePrecedence, "dot", ""},
		{VizTypePrecedence, "json", errors.ErrCodeInvalidFormat},
		{VizTypeGantt, "SVG", errors.ErrCodeInvalidFormat},
		{"tower", "svg", errors.ErrCodeInvalidVizType},
	}

	for _, tt := range tests {
		t.Run(tt.viz+"/"+tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.viz, tt.format)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateFormat() error = %v", err)
				}
				return
			}
			if got := errors.GetCode(err); got != tt.wantErr {
				t.Errorf("code = %s, want %s", got, tt.wantErr)
			}
		})
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"light", false},
		{"dark", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.VizType != DefaultVizType {
		t.Errorf("VizType = %s, want %s", opts.VizType, DefaultVizType)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style = %s, want %s", opts.Style, DefaultStyle)
	}
	if opts.Layout.PixelsPerHour != layout.DefaultPixelsPerHour {
		t.Errorf("PixelsPerHour = %g", opts.Layout.PixelsPerHour)
	}
	if opts.Logger == nil || opts.Now == nil {
		t.Error("runtime defaults not set")
	}

	before := opts.Style
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.Style != before {
		t.Error("second ValidateAndSetDefaults call changed the options")
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad duplicates", Options{Layout: layout.Config{Duplicates: "first"}}, errors.ErrCodeInvalidInput},
		{"inverted viewport", Options{Viewport: &layout.Viewport{
			Start: time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
		}}, errors.ErrCodeInvalidTimeRange},
		{"bad viz", Options{VizType: "tower"}, errors.ErrCodeInvalidVizType},
		{"bad style", Options{Style: "neon"}, errors.ErrCodeInvalidStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	base := Options{}
	elbow := Options{Layout: layout.Config{Router: route.Elbow{}}}
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	zoned := Options{Layout: layout.Config{Location: berlin}}

	if got := base.LayoutKeyOpts(); got.Router != route.NameCurved || got.Timezone != "UTC" || got.PixelsPerHour != 12 {
		t.Errorf("base key opts = %+v", got)
	}
	if elbow.LayoutKeyOpts() == base.LayoutKeyOpts() {
		t.Error("router should change the key options")
	}
	if zoned.LayoutKeyOpts() == base.LayoutKeyOpts() {
		t.Error("time zone should change the key options")
	}

	tests := []struct {
		name    string
		cfg     layout.Config
		wantPPH float64
	}{
		{"inside bounds", layout.Config{PixelsPerHour: 300, MaxPixelsPerHour: 500}, 300},
		{"clamped to default max", layout.Config{PixelsPerHour: 300}, 200},
		{"clamped to min", layout.Config{PixelsPerHour: 3, MinPixelsPerHour: 6}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&Options{Layout: tt.cfg}).LayoutKeyOpts()
			if got.PixelsPerHour != tt.wantPPH {
				t.Errorf("PixelsPerHour = %g, want %g", got.PixelsPerHour, tt.wantPPH)
			}
			if got == base.LayoutKeyOpts() {
				t.Error("bounds should change the key options")
			}
		})
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), dataset(), Options{
		Formats: []string{FormatSVG, FormatJSON},
		Now:     clock("2025-08-10T12:00:00Z"),
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Stats.ResourceCount != 2 || res.Stats.TaskCount != 2 || res.Stats.LinkCount != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Snapshot.Bars) != 2 || len(res.Snapshot.Connectors) != 1 {
		t.Errorf("snapshot has %d bars, %d connectors", len(res.Snapshot.Bars), len(res.Snapshot.Connectors))
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing")
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"connectors"`) {
		t.Error("json artifact missing")
	}
	if res.DatasetHash == "" {
		t.Error("DatasetHash not set")
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("NullCache should never hit")
	}
}

func TestExecuteCachesLayout(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	runner := NewRunner(c, nil, nil)

	first, err := runner.Execute(ctx, dataset(), Options{Now: clock("2025-08-10T12:00:00Z")})
	if err != nil {
		t.Fatal(err)
	}
	if first.Snapshot.TodayX == nil {
		t.Fatal("today marker should be inside the viewport")
	}

	second, err := runner.Execute(ctx, dataset(), Options{Now: clock("2026-01-01T00:00:00Z")})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	if second.Snapshot.TodayX != nil {
		t.Errorf("cached snapshot kept a stale today marker at %g", *second.Snapshot.TodayX)
	}
	if second.CacheInfo.RenderHit {
		t.Error("a moved today marker must not reuse the rendered artifact")
	}

	third, err := runner.Execute(ctx, dataset(), Options{Now: clock("2026-01-01T00:00:00Z")})
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.LayoutHit || !third.CacheInfo.RenderHit {
		t.Errorf("third run cache info = %+v, want both hits", third.CacheInfo)
	}
	if string(third.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from the rendered one")
	}
}

func TestExecuteRefresh(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	now := clock("2025-08-10T12:00:00Z")

	if _, err := runner.Execute(ctx, dataset(), Options{Now: now}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(ctx, dataset(), Options{Now: now, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("Refresh should skip cache reads")
	}
}

func TestExecuteTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"default", 0, cache.TTLLayout},
		{"override", 90 * time.Minute, 90 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMemCache()
			runner := NewRunner(c, nil, nil)
			runner.TTL = tt.ttl
			if _, err := runner.Execute(context.Background(), dataset(), Options{Now: clock("2025-08-10T12:00:00Z")}); err != nil {
				t.Fatal(err)
			}
			if len(c.ttls) != 2 {
				t.Fatalf("sets = %d, want layout and svg", len(c.ttls))
			}
			for _, got := range c.ttls {
				if got != tt.want {
					t.Errorf("ttl = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestExecuteOptionsChangeKey(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(newMemCache(), nil, nil)
	now := clock("2025-08-10T12:00:00Z")

	if _, err := runner.Execute(ctx, dataset(), Options{Now: now}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(ctx, dataset(), Options{Now: now, Layout: layout.Config{PixelsPerHour: 24}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("a different zoom must not reuse the cached layout")
	}
	if res.Snapshot.PixelsPerHour != 24 {
		t.Errorf("PixelsPerHour = %g, want 24", res.Snapshot.PixelsPerHour)
	}
}

func TestExecuteZoomBoundsChangeKey(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(newMemCache(), nil, nil)
	now := clock("2025-08-10T12:00:00Z")

	tests := []struct {
		name    string
		cfg     layout.Config
		wantHit bool
		wantPPH float64
	}{
		{"wide bounds", layout.Config{PixelsPerHour: 300, MaxPixelsPerHour: 500}, false, 300},
		{"default bounds", layout.Config{PixelsPerHour: 300}, false, 200},
		{"default bounds again", layout.Config{PixelsPerHour: 300}, true, 200},
		{"default max spelled out", layout.Config{PixelsPerHour: 200}, true, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runner.Execute(ctx, dataset(), Options{Now: now, Layout: tt.cfg})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if res.CacheInfo.LayoutHit != tt.wantHit {
				t.Errorf("LayoutHit = %v, want %v", res.CacheInfo.LayoutHit, tt.wantHit)
			}
			if res.Snapshot.PixelsPerHour != tt.wantPPH {
				t.Errorf("PixelsPerHour = %g, want %g", res.Snapshot.PixelsPerHour, tt.wantPPH)
			}
		})
	}
}

func TestExecuteRejectedTasks(t *testing.T) {
	ctx := context.Background()
	ds := dataset()
	ds.Resources[0].Tasks = append(ds.Resources[0].Tasks, gantt.Task{
		ID: "BAD", Start: gantt.ParseInstant("2025-08-10T12:00"), End: gantt.ParseInstant("2025-08-10T08:00"),
	})
	runner := NewRunner(newMemCache(), nil, nil)

	for _, pass := range []string{"computed", "cached"} {
		t.Run(pass, func(t *testing.T) {
			res, err := runner.Execute(ctx, ds, Options{Now: clock("2025-08-10T12:00:00Z")})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if len(res.Rejected) != 1 || res.Rejected[0].TaskID != "BAD" {
				t.Errorf("Rejected = %+v", res.Rejected)
			}
			if len(res.Snapshot.Bars) != 2 {
				t.Errorf("bars = %d, want 2", len(res.Snapshot.Bars))
			}
		})
	}
}

func TestExecuteDuplicatesRejected(t *testing.T) {
	ds := dataset()
	ds.Resources[1].Tasks[0].ID = "A1"
	runner := NewRunner(nil, nil, nil)

	_, err := runner.Execute(context.Background(), ds, Options{Layout: layout.Config{Duplicates: layout.RejectDuplicates}})
	if !errors.Is(err, errors.ErrCodeDuplicateTaskID) {
		t.Errorf("Execute() error = %v, want DUPLICATE_TASK_ID", err)
	}
}

func TestExecutePrecedence(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), dataset(), Options{
		VizType: VizTypePrecedence,
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `"A1" -> "B2";`) {
		t.Errorf("dot = %s", res.Artifacts[FormatDOT])
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) OnLayoutStart(context.Context, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "layout:start")
}

func (h *recordingHooks) OnLayoutComplete(context.Context, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "layout:done")
}

func (h *recordingHooks) OnRenderStart(_ context.Context, viz string, _ []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "render:start:"+viz)
}

func (h *recordingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "render:done")
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), dataset(), Options{}); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(hooks.events, ",")
	if want := "layout:start,layout:done,render:start:gantt,render:done"; got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestHashDataset(t *testing.T) {
	a, err := HashDataset(dataset())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashDataset(dataset())
	if a != b {
		t.Error("HashDataset should be deterministic")
	}
	ds := dataset()
	ds.Resources[0].Tasks[0].Label = "changed"
	if c, _ := HashDataset(ds); c == a {
		t.Error("a changed dataset should hash differently")
	}
}
