package layout

import "github.com/doyel/gantt/pkg/gantt"

// RowPlacement is the vertical band of one resource.
type RowPlacement struct {
	ResourceID string  `json:"resource_id"`
	Name       string  `json:"name"`
	Index      int     `json:"index"`
	Y          float64 `json:"y"`
	Height     float64 `json:"height"`
}

// CenterY returns the vertical center of the band.
func (r RowPlacement) CenterY() float64 { return r.Y + r.Height/2 }

// BuildRows assigns each resource a band in list order and returns the
// bands with the total canvas height:
//
//	y(i)   = headerHeight + i*rowHeight
//	height = headerHeight + n*rowHeight + bottomPadding
func BuildRows(resources []gantt.Resource, cfg Config) ([]RowPlacement, float64) {
	rows := make([]RowPlacement, len(resources))
	for i := range resources {
		rows[i] = RowPlacement{
			ResourceID: resources[i].ID,
			Name:       resources[i].DisplayName(),
			Index:      i,
			Y:          cfg.HeaderHeight + float64(i)*cfg.RowHeight,
			Height:     cfg.RowHeight,
		}
	}
	height := cfg.HeaderHeight + float64(len(resources))*cfg.RowHeight + cfg.BottomPadding
	return rows, height
}
