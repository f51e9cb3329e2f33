package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/doyel/gantt/pkg/layout/route"
	"github.com/doyel/gantt/pkg/timescale"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultPixelsPerHour = timescale.DefaultPixelsPerHour
	DefaultRowHeight     = 48.0
	DefaultLeftGutter    = 160.0
	DefaultHeaderHeight  = 28.0
	DefaultMinBarWidth   = 4.0
	DefaultBottomPadding = 8.0
	DefaultRightPadding  = 40.0
)

// DuplicatePolicy decides what happens when two tasks share an identifier.
type DuplicatePolicy string

const (
	// LastWriteWins keeps every bar but resolves connectors to the task
	// encountered last in resource and task order.
	LastWriteWins DuplicatePolicy = "last-write-wins"
	// RejectDuplicates fails the recompute with DUPLICATE_TASK_ID.
	RejectDuplicates DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy parses a policy name. An empty name selects
// LastWriteWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LastWriteWins:
		return LastWriteWins, nil
	case RejectDuplicates:
		return RejectDuplicates, nil
	default:
		return "", fmt.Errorf("invalid duplicate policy: %q (must be one of: last-write-wins, reject)", s)
	}
}

// Zero requests an explicit zero for LeftGutter, HeaderHeight,
// BottomPadding or RightPadding, where a plain 0 selects the default.
// Any negative value of those fields means the same.
const Zero = -1.0

// Config holds the layout constants. Zero fields take their defaults
// when the config is used; see [Config.WithDefaults]. Set a spacing field
// to [Zero] to remove that spacing.
type Config struct {
	PixelsPerHour    float64
	MinPixelsPerHour float64
	MaxPixelsPerHour float64
	ZoomFactor       float64

	RowHeight        float64
	LeftGutter       float64
	HeaderHeight     float64
	MinBarWidth      float64
	BottomPadding    float64
	RightPadding     float64
	ConnectorPadding float64

	// Location interprets zone-less task instants and places day and hour
	// boundaries. Nil means UTC.
	Location *time.Location

	Router     route.Router
	Duplicates DuplicatePolicy

	// defaulted marks the result of WithDefaults, whose spacing zeros are
	// explicit and must survive a second call.
	defaulted bool
}

// DefaultConfig returns the stock layout constants.
func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

// WithDefaults returns a copy with every unset field filled in. Negative
// spacing becomes 0. Calling it again on its result changes nothing.
func (c Config) WithDefaults() Config {
	if c.PixelsPerHour <= 0 {
		c.PixelsPerHour = DefaultPixelsPerHour
	}
	if c.MinPixelsPerHour <= 0 {
		c.MinPixelsPerHour = timescale.DefaultMinPixelsPerHour
	}
	if c.MaxPixelsPerHour <= 0 {
		c.MaxPixelsPerHour = timescale.DefaultMaxPixelsPerHour
	}
	if c.ZoomFactor <= 1 {
		c.ZoomFactor = timescale.DefaultZoomFactor
	}
	if c.RowHeight <= 0 {
		c.RowHeight = DefaultRowHeight
	}
	c.LeftGutter = spacing(c.LeftGutter, DefaultLeftGutter, c.defaulted)
	c.HeaderHeight = spacing(c.HeaderHeight, DefaultHeaderHeight, c.defaulted)
	if c.MinBarWidth <= 0 {
		c.MinBarWidth = DefaultMinBarWidth
	}
	c.BottomPadding = spacing(c.BottomPadding, DefaultBottomPadding, c.defaulted)
	c.RightPadding = spacing(c.RightPadding, DefaultRightPadding, c.defaulted)
	if c.ConnectorPadding < 0 {
		c.ConnectorPadding = 0
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Router == nil {
		c.Router = route.Curved{}
	}
	if c.Duplicates == "" {
		c.Duplicates = LastWriteWins
	}
	c.defaulted = true
	return c
}

func spacing(v, def float64, defaulted bool) float64 {
	switch {
	case v < 0:
		return 0
	case v == 0 && !defaulted:
		return def
	}
	return v
}

// Validate reports configurations that cannot produce a layout.
func (c Config) Validate() error {
	if c.MaxPixelsPerHour > 0 && c.MinPixelsPerHour > c.MaxPixelsPerHour {
		return fmt.Errorf("min pixels per hour %g exceeds max %g", c.MinPixelsPerHour, c.MaxPixelsPerHour)
	}
	if c.ZoomFactor != 0 && c.ZoomFactor <= 1 {
		return fmt.Errorf("zoom factor must be greater than 1, got %g", c.ZoomFactor)
	}
	if _, err := ParseDuplicatePolicy(string(c.Duplicates)); err != nil {
		return err
	}
	return nil
}

// NewScale builds the time scale described by the config.
func (c Config) NewScale() (*timescale.Scale, error) {
	c = c.WithDefaults()
	return timescale.NewWithBounds(c.PixelsPerHour, c.MinPixelsPerHour, c.MaxPixelsPerHour, c.ZoomFactor)
}
