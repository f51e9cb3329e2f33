package sink

import (
	"encoding/json"
	"fmt"

	"github.com/doyel/gantt/pkg/layout"
)

// RenderJSON exports a snapshot as indented JSON. The document is the
// snapshot itself, so it can be decoded back into a layout.Snapshot.
func RenderJSON(snap *layout.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadJSON decodes a snapshot written by RenderJSON.
func ReadJSON(data []byte) (*layout.Snapshot, error) {
	var snap layout.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
