package pipeline

import (
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/layout"
)

// GenerateLayout runs one uncached layout pass over ds.
//
// It returns a nil snapshot only when the pass fails structurally (invalid
// viewport, duplicate identifiers under the reject policy). Rejected tasks
// come back as a snapshot plus *errors.RejectedTasksError.
func GenerateLayout(ds *gantt.Dataset, opts Options) (*layout.Snapshot, error) {
	opts.SetLayoutDefaults()

	engineOpts := []layout.Option{layout.WithClock(opts.Now)}
	if opts.Viewport != nil {
		engineOpts = append(engineOpts, layout.WithViewport(*opts.Viewport))
	}

	eng, err := layout.New(ds, opts.Layout, engineOpts...)
	if err != nil {
		return nil, err
	}
	return eng.Recompute()
}
