package pipeline

import (
	"github.com/doyel/gantt/pkg/gantt"
	gio "github.com/doyel/gantt/pkg/io"
)

// Parse reads a dataset file. The format is chosen by extension.
func Parse(path string) (*gantt.Dataset, error) {
	return gio.ReadDataset(path)
}
