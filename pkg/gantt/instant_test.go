package gantt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

func TestInstantResolve(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name    string
		raw     string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{"zone-less seconds", "2025-08-10T06:00:00", nil, time.Date(2025, 8, 10, 6, 0, 0, 0, time.UTC), false},
		{"zone-less minutes", "2025-08-10T06:30", nil, time.Date(2025, 8, 10, 6, 30, 0, 0, time.UTC), false},
		{"space separator", "2025-08-10 06:00", nil, time.Date(2025, 8, 10, 6, 0, 0, 0, time.UTC), false},
		{"date only", "2025-08-10", nil, time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC), false},
		{"fractional seconds", "2025-08-10T06:00:00.5", nil, time.Date(2025, 8, 10, 6, 0, 0, 5e8, time.UTC), false},
		{"zone-less in location", "2025-08-10T06:00:00", berlin, time.Date(2025, 8, 10, 6, 0, 0, 0, berlin), false},
		{"explicit offset wins", "2025-08-10T06:00:00Z", berlin, time.Date(2025, 8, 10, 6, 0, 0, 0, time.UTC), false},
		{"garbage", "next tuesday", nil, time.Time{}, true},
		{"unset", "", nil, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.raw).Resolve(tt.loc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInstantAt(t *testing.T) {
	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	i := At(now)

	if i.IsZero() {
		t.Fatal("At(now).IsZero() = true")
	}
	got, err := i.Resolve(nil)
	if err != nil || !got.Equal(now) {
		t.Errorf("Resolve() = %v, %v; want %v", got, err, now)
	}
	if i.String() != "2025-08-10T12:00:00Z" {
		t.Errorf("String() = %q", i.String())
	}
}

func TestInstantJSON(t *testing.T) {
	var task Task
	in := `{"id":"A1","label":"A","start":"2025-08-10T06:00:00","end":1754848800000}`
	if err := json.Unmarshal([]byte(in), &task); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if task.Start.Raw() != "2025-08-10T06:00:00" {
		t.Errorf("Start.Raw() = %q", task.Start.Raw())
	}
	end, err := task.End.Resolve(nil)
	if err != nil {
		t.Fatalf("End.Resolve: %v", err)
	}
	if want := time.Date(2025, 8, 10, 18, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("End = %v, want %v", end, want)
	}

	var unset Instant
	data, err := json.Marshal(unset)
	if err != nil || string(data) != "null" {
		t.Errorf("Marshal(unset) = %s, %v; want null", data, err)
	}

	var bad Instant
	if err := json.Unmarshal([]byte(`true`), &bad); err == nil {
		t.Error("Unmarshal(true) succeeded, want error")
	}
}

func TestInstantYAMLKeepsZoneLessText(t *testing.T) {
	var w Window
	in := "start: 2025-08-10T06:00:00\nend: 2025-08-10\n"
	if err := yaml.Unmarshal([]byte(in), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if w.Start.Raw() != "2025-08-10T06:00:00" {
		t.Errorf("Start.Raw() = %q", w.Start.Raw())
	}
	if w.End.Raw() != "2025-08-10" {
		t.Errorf("End.Raw() = %q", w.End.Raw())
	}

	var bad Window
	if err := yaml.Unmarshal([]byte("start: [1, 2]\n"), &bad); err == nil {
		t.Error("Unmarshal(sequence) succeeded, want error")
	}
}

func TestInstantTOML(t *testing.T) {
	var w Window
	in := "start = 2025-08-10T06:00:00\nend = \"2025-08-10 18:00\"\n"
	if _, err := toml.Decode(in, &w); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w.Start.Raw() != "2025-08-10T06:00:00" {
		t.Errorf("Start.Raw() = %q, want zone-less text", w.Start.Raw())
	}
	if w.End.Raw() != "2025-08-10 18:00" {
		t.Errorf("End.Raw() = %q", w.End.Raw())
	}

	var offset Window
	if _, err := toml.Decode("start = 2025-08-10T06:00:00+02:00\nend = 2025-08-10\n", &offset); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, err := offset.Start.Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := time.Date(2025, 8, 10, 4, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Start = %v, want %v", got, want)
	}
	if offset.End.Raw() != "2025-08-10T00:00:00" {
		t.Errorf("End.Raw() = %q", offset.End.Raw())
	}
}
