package layout

import (
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/layout/route"
)

// Connector links a task's trailing edge to a successor's leading edge.
type Connector struct {
	From     string     `json:"from"`
	To       string     `json:"to"`
	CrossRow bool       `json:"cross_row"`
	Path     route.Path `json:"path"`
}

// BuildConnectors routes one connector per (task, successor) pair in
// dataset order. Pairs whose source or target has no bar are skipped.
func BuildConnectors(ds *gantt.Dataset, bars []BarPlacement, index BarIndex, cfg Config) []Connector {
	router := cfg.Router
	if router == nil {
		router = route.Curved{}
	}
	var out []Connector
	for _, r := range ds.Resources {
		for _, t := range r.Tasks {
			if len(t.Successors) == 0 {
				continue
			}
			fi, ok := index[t.ID]
			if !ok {
				continue
			}
			from := bars[fi]
			for _, succ := range t.Successors {
				ti, ok := index[succ]
				if !ok {
					continue
				}
				to := bars[ti]
				out = append(out, Connector{
					From:     t.ID,
					To:       succ,
					CrossRow: from.CenterY() != to.CenterY(),
					Path: router.Route(
						route.Anchor{X: from.Right() + cfg.ConnectorPadding, Y: from.CenterY()},
						route.Anchor{X: to.X - cfg.ConnectorPadding, Y: to.CenterY()},
					),
				})
			}
		}
	}
	return out
}
