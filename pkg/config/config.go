// Package config loads gantt settings from TOML files and the environment.
//
// Sources are applied in priority order, later ones overriding earlier:
//
//  1. Defaults
//  2. User config file ($XDG_CONFIG_HOME/gantt/gantt.toml)
//  3. Project config file (gantt.toml or .gantt.toml in the working directory)
//  4. Environment variables (GANTT_*)
//  5. CLI flags, applied by the caller
//
// A config file looks like:
//
//	[layout]
//	pixels_per_hour = 12
//	router = "elbow"
//	timezone = "Europe/Berlin"
//
//	[render]
//	style = "dark"
//	show_hours = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doyel/gantt/pkg/cache"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/layout/route"
	"github.com/doyel/gantt/pkg/pipeline"
	"github.com/doyel/gantt/pkg/render/sink"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultTimezone      = "UTC"
	DefaultCacheBackend  = cache.BackendFile
	DefaultCacheTTL      = 24 * time.Hour
	DefaultMongoDatabase = "gantt"
	DefaultServerAddr    = ":8080"
)

// =============================================================================
// Types
// =============================================================================

// Config is the complete settings tree.
type Config struct {
	Layout LayoutSection `toml:"layout"`
	Render RenderSection `toml:"render"`
	Cache  CacheSection  `toml:"cache"`
	Server ServerSection `toml:"server"`
}

// LayoutSection holds [layout].
type LayoutSection struct {
	PixelsPerHour    float64 `toml:"pixels_per_hour"`
	MinPixelsPerHour float64 `toml:"min_pixels_per_hour"`
	MaxPixelsPerHour float64 `toml:"max_pixels_per_hour"`
	ZoomFactor       float64 `toml:"zoom_factor"`
	RowHeight        float64 `toml:"row_height"`
	LeftGutter       float64 `toml:"left_gutter"`
	HeaderHeight     float64 `toml:"header_height"`
	MinBarWidth      float64 `toml:"min_bar_width"`
	BottomPadding    float64 `toml:"bottom_padding"`
	RightPadding     float64 `toml:"right_padding"`
	ConnectorPadding float64 `toml:"connector_padding"`
	Router           string  `toml:"router"`
	Duplicates       string  `toml:"duplicates"`
	Timezone         string  `toml:"timezone"`
}

// RenderSection holds [render].
type RenderSection struct {
	VizType   string   `toml:"viz_type"`
	Style     string   `toml:"style"`
	ShowHours bool     `toml:"show_hours"`
	ShowToday bool     `toml:"show_today"`
	Formats   []string `toml:"formats"`
}

// CacheSection holds [cache].
type CacheSection struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	TTL             Duration `toml:"ttl"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// ServerSection holds [server].
type ServerSection struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("90m", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Layout: LayoutSection{
			PixelsPerHour:    layout.DefaultPixelsPerHour,
			RowHeight:        layout.DefaultRowHeight,
			LeftGutter:       layout.DefaultLeftGutter,
			HeaderHeight:     layout.DefaultHeaderHeight,
			MinBarWidth:      layout.DefaultMinBarWidth,
			BottomPadding:    layout.DefaultBottomPadding,
			RightPadding:     layout.DefaultRightPadding,
			Router:           route.DefaultName,
			Duplicates:       string(layout.LastWriteWins),
			Timezone:         DefaultTimezone,
		},
		Render: RenderSection{
			VizType:   pipeline.DefaultVizType,
			Style:     pipeline.DefaultStyle,
			ShowToday: true,
			Formats:   []string{pipeline.FormatSVG},
		},
		Cache: CacheSection{
			Backend:       DefaultCacheBackend,
			TTL:           Duration{DefaultCacheTTL},
			MongoDatabase: DefaultMongoDatabase,
		},
		Server: ServerSection{
			Addr: DefaultServerAddr,
		},
	}
}

// =============================================================================
// Validation
// =============================================================================

// Validate reports every invalid enum or number in the config.
func (c *Config) Validate() error {
	var problems []string
	add := func(err error) {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	if _, err := route.ByName(c.Layout.Router); err != nil {
		add(fmt.Errorf("layout.router: %w", err))
	}
	if _, err := layout.ParseDuplicatePolicy(c.Layout.Duplicates); err != nil {
		add(fmt.Errorf("layout.duplicates: %w", err))
	}
	if _, err := time.LoadLocation(c.Layout.Timezone); err != nil {
		add(fmt.Errorf("layout.timezone: %w", err))
	}
	for name, v := range map[string]float64{
		"pixels_per_hour": c.Layout.PixelsPerHour,
		"row_height":      c.Layout.RowHeight,
		"left_gutter":     c.Layout.LeftGutter,
		"header_height":   c.Layout.HeaderHeight,
		"min_bar_width":   c.Layout.MinBarWidth,
		"bottom_padding":  c.Layout.BottomPadding,
		"right_padding":   c.Layout.RightPadding,
	} {
		if v < 0 {
			add(fmt.Errorf("layout.%s must not be negative, got %g", name, v))
		}
	}
	if err := c.layoutConfig(nil, nil).Validate(); err != nil {
		add(fmt.Errorf("layout: %w", err))
	}

	if err := pipeline.ValidateFormats(c.Render.VizType, c.Render.Formats); err != nil {
		add(fmt.Errorf("render: %w", err))
	}
	if _, err := sink.StyleByName(c.Render.Style); err != nil {
		add(fmt.Errorf("render.style: %w", err))
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			add(fmt.Errorf("cache.redis_addr is required for the redis backend"))
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			add(fmt.Errorf("cache.mongo_uri is required for the mongo backend"))
		}
	default:
		add(fmt.Errorf("cache.backend: unknown backend %q (want file, redis, mongo or none)", c.Cache.Backend))
	}
	if c.Cache.TTL.Duration < 0 {
		add(fmt.Errorf("cache.ttl must not be negative"))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// =============================================================================
// Conversions
// =============================================================================

// LayoutConfig converts [layout] into an engine configuration.
func (c *Config) LayoutConfig() (layout.Config, error) {
	router, err := route.ByName(c.Layout.Router)
	if err != nil {
		return layout.Config{}, err
	}
	loc, err := time.LoadLocation(c.Layout.Timezone)
	if err != nil {
		return layout.Config{}, fmt.Errorf("timezone %q: %w", c.Layout.Timezone, err)
	}
	cfg := c.layoutConfig(router, loc)
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

func (c *Config) layoutConfig(router route.Router, loc *time.Location) layout.Config {
	return layout.Config{
		PixelsPerHour:    c.Layout.PixelsPerHour,
		MinPixelsPerHour: c.Layout.MinPixelsPerHour,
		MaxPixelsPerHour: c.Layout.MaxPixelsPerHour,
		ZoomFactor:       c.Layout.ZoomFactor,
		RowHeight:        c.Layout.RowHeight,
		LeftGutter:       explicit(c.Layout.LeftGutter),
		HeaderHeight:     explicit(c.Layout.HeaderHeight),
		MinBarWidth:      c.Layout.MinBarWidth,
		BottomPadding:    explicit(c.Layout.BottomPadding),
		RightPadding:     explicit(c.Layout.RightPadding),
		ConnectorPadding: c.Layout.ConnectorPadding,
		Location:         loc,
		Router:           router,
		Duplicates:       layout.DuplicatePolicy(strings.ToLower(c.Layout.Duplicates)),
	}
}

// explicit maps a spacing of 0 to layout.Zero. Default fills every spacing
// in, so a 0 here was set on purpose.
func explicit(v float64) float64 {
	if v == 0 {
		return layout.Zero
	}
	return v
}

// PipelineOptions converts [layout] and [render] into pipeline options.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	lc, err := c.LayoutConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Layout:    lc,
		VizType:   c.Render.VizType,
		Formats:   append([]string(nil), c.Render.Formats...),
		Style:     c.Render.Style,
		ShowHours: c.Render.ShowHours,
		HideToday: !c.Render.ShowToday,
	}, nil
}

// CacheOptions converts [cache] into backend options. An empty file cache
// directory resolves to the user cache directory.
func (c *Config) CacheOptions() cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = DefaultCacheDir()
	}
	return cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             expandPath(dir),
		RedisAddr:       c.Cache.RedisAddr,
		RedisPassword:   c.Cache.RedisPassword,
		RedisDB:         c.Cache.RedisDB,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// DefaultCacheDir returns the file cache location (~/.cache/gantt on Linux).
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "gantt")
	}
	return filepath.Join(os.TempDir(), "gantt-cache")
}
