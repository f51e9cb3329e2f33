package route

import (
	"fmt"
	"testing"
)

func TestCurved(t *testing.T) {
	tests := []struct {
		name     string
		from, to Anchor
		want     Path
	}{
		{
			name: "same row is straight",
			from: Anchor{X: 100, Y: 52},
			to:   Anchor{X: 200, Y: 52},
			want: Path{Kind: KindLine, Points: []Point{{100, 52}, {200, 52}}},
		},
		{
			name: "downward, wide gap",
			from: Anchor{X: 304, Y: 52},
			to:   Anchor{X: 400, Y: 100},
			want: Path{Kind: KindCubic, Points: []Point{{304, 52}, {352, 52}, {352, 100}, {400, 100}}},
		},
		{
			name: "narrow gap uses minimum offset",
			from: Anchor{X: 100, Y: 52},
			to:   Anchor{X: 110, Y: 100},
			want: Path{Kind: KindCubic, Points: []Point{{100, 52}, {124, 52}, {86, 100}, {110, 100}}},
		},
		{
			name: "target above and behind",
			from: Anchor{X: 300, Y: 148},
			to:   Anchor{X: 200, Y: 52},
			want: Path{Kind: KindCubic, Points: []Point{{300, 148}, {324, 148}, {176, 52}, {200, 52}}},
		},
		{
			name: "target below and far behind",
			from: Anchor{X: 570, Y: 52},
			to:   Anchor{X: 170, Y: 100},
			want: Path{Kind: KindCubic, Points: []Point{{570, 52}, {594, 52}, {146, 100}, {170, 100}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Curved{}.Route(tt.from, tt.to)
			if !equalPath(got, tt.want) {
				t.Errorf("Route() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestElbow(t *testing.T) {
	tests := []struct {
		name     string
		from, to Anchor
		want     Path
	}{
		{
			name: "same row is straight",
			from: Anchor{X: 10, Y: 20},
			to:   Anchor{X: 30, Y: 20},
			want: Path{Kind: KindLine, Points: []Point{{10, 20}, {30, 20}}},
		},
		{
			name: "downward",
			from: Anchor{X: 100, Y: 52},
			to:   Anchor{X: 200, Y: 148},
			want: Path{Kind: KindPolyline, Points: []Point{{100, 52}, {150, 52}, {150, 148}, {200, 148}}},
		},
		{
			name: "upward and backward",
			from: Anchor{X: 200, Y: 148},
			to:   Anchor{X: 100, Y: 52},
			want: Path{Kind: KindPolyline, Points: []Point{{200, 148}, {150, 148}, {150, 52}, {100, 52}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Elbow{}.Route(tt.from, tt.to)
			if !equalPath(got, tt.want) {
				t.Errorf("Route() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEndpointsAreAnchors(t *testing.T) {
	from, to := Anchor{X: 12.5, Y: 52}, Anchor{X: 80, Y: 244}
	for _, r := range []Router{Curved{}, Elbow{}} {
		p := r.Route(from, to)
		if p.Start() != from || p.End() != to {
			t.Errorf("%s: endpoints = %v..%v, want %v..%v", r.Name(), p.Start(), p.End(), from, to)
		}
	}
}

func TestPathD(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{Path{}, ""},
		{Path{Kind: KindLine, Points: []Point{{1, 2}, {3, 4}}}, "M 1 2 L 3 4"},
		{Path{Kind: KindPolyline, Points: []Point{{0, 0}, {5, 0}, {5, 5}}}, "M 0 0 L 5 0 L 5 5"},
		{Path{Kind: KindCubic, Points: []Point{{304, 52}, {352, 52}, {352, 100}, {400, 100}}}, "M 304 52 C 352 52, 352 100, 400 100"},
		{Path{Kind: KindLine, Points: []Point{{1.006, 2.3333}, {3, 4}}}, "M 1.01 2.33 L 3 4"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.path.D(); got != tt.want {
				t.Errorf("D() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", NameCurved, false},
		{"curved", NameCurved, false},
		{"Elbow", NameElbow, false},
		{"spline", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && r.Name() != tt.want {
				t.Errorf("ByName(%q) = %s, want %s", tt.name, r.Name(), tt.want)
			}
		})
	}
}

func equalPath(a, b Path) bool {
	if a.Kind != b.Kind || len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			return false
		}
	}
	return true
}

func ExampleCurved_Route() {
	p := Curved{}.Route(Anchor{X: 304, Y: 52}, Anchor{X: 400, Y: 100})
	fmt.Println(p.D())
	// Output: M 304 52 C 352 52, 352 100, 400 100
}
