package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/doyel/gantt/pkg/cache"
	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides cache.TTLLayout and cache.TTLArtifact when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout → render on a parsed dataset.
//
// Tasks with an invalid time range do not fail the run: they are listed in
// Result.Rejected and logged as warnings.
func (r *Runner) Execute(ctx context.Context, ds *gantt.Dataset, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	if ds == nil {
		ds = &gantt.Dataset{}
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
		Stats: Stats{
			ResourceCount: len(ds.Resources),
			TaskCount:     ds.TaskCount(),
			LinkCount:     ds.LinkCount(),
		},
	}
	if h, err := HashDataset(ds); err == nil {
		result.DatasetHash = h
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	snap, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, ds, opts)
	var rejected *errors.RejectedTasksError
	if err != nil && !stderrors.As(err, &rejected) {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Snapshot = snap
	result.Rejected = snap.Rejected
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	for _, t := range snap.Rejected {
		r.Logger.Warn("task rejected", "task", t.TaskID, "resource", t.ResourceID, "reason", t.Reason)
	}
	r.Logger.Info("computed layout",
		"rows", len(snap.Rows),
		"bars", len(snap.Bars),
		"connectors", len(snap.Connectors),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, ds, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"viz", opts.VizType,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse reads a dataset file. It exists on the runner so every entry point
// logs reads the same way.
func (r *Runner) Parse(ctx context.Context, path string) (*gantt.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := Parse(path)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("read dataset",
		"path", path,
		"resources", len(ds.Resources),
		"tasks", ds.TaskCount(),
		"links", ds.LinkCount())
	return ds, nil
}

// GenerateLayoutWithCacheInfo computes a snapshot with caching and returns
// cache hit info. Like [layout.Engine.Recompute], it returns the snapshot
// together with a *errors.RejectedTasksError when tasks were rejected.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, ds *gantt.Dataset, opts Options) (*layout.Snapshot, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	if ds == nil {
		ds = &gantt.Dataset{}
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, ds.TaskCount())

	snap, hit, err := r.generateLayout(ctx, ds, opts)
	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	return snap, hit, err
}

func (r *Runner) generateLayout(ctx context.Context, ds *gantt.Dataset, opts Options) (*layout.Snapshot, bool, error) {
	datasetHash, err := HashDataset(ds)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(datasetHash, opts.LayoutKeyOpts())
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Snapshot
			if err := json.Unmarshal(data, &cached); err == nil {
				cacheHooks.OnCacheHit(ctx, "layout")
				snap := cached.WithToday(opts.Now())
				return snap, true, rejectedError(snap)
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	snap, err := GenerateLayout(ds, opts)
	if snap == nil {
		return nil, false, err
	}

	if data, merr := json.Marshal(snap); merr == nil {
		if serr := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); serr != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "err", serr)
		} else {
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return snap, false, err
}

// GenerateLayoutSnapshot is a convenience wrapper that calls
// GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayoutSnapshot(ctx context.Context, ds *gantt.Dataset, opts Options) (*layout.Snapshot, error) {
	snap, _, err := r.GenerateLayoutWithCacheInfo(ctx, ds, opts)
	return snap, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. The gantt view renders snap; the precedence view renders ds.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, ds *gantt.Dataset, snap *layout.Snapshot, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats)

	artifacts, hit, err := r.render(ctx, ds, snap, opts)
	hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, ds *gantt.Dataset, snap *layout.Snapshot, opts Options) (map[string][]byte, bool, error) {
	contentHash, err := renderInputHash(ds, snap, opts)
	if err != nil {
		return nil, false, fmt.Errorf("hash render input: %w", err)
	}
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(contentHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, ds, snap, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(contentHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// RenderArtifacts is a convenience wrapper that calls RenderWithCacheInfo
// and discards the cache hit info.
func (r *Runner) RenderArtifacts(ctx context.Context, ds *gantt.Dataset, snap *layout.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, ds, snap, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Hashing
// =============================================================================

// HashDataset returns the content hash of the dataset's JSON encoding.
func HashDataset(ds *gantt.Dataset) (string, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("serialize dataset: %w", err)
	}
	return cache.Hash(data), nil
}

// hashSnapshot hashes the geometry of snap. ComputedAt is left out so two
// passes with the same today marker share artifacts.
func hashSnapshot(snap *layout.Snapshot) (string, error) {
	c := *snap
	c.ComputedAt = time.Time{}
	data, err := json.Marshal(&c)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

func renderInputHash(ds *gantt.Dataset, snap *layout.Snapshot, opts Options) (string, error) {
	if opts.IsPrecedence() {
		if ds == nil {
			return "", fmt.Errorf("precedence view needs a dataset")
		}
		return HashDataset(ds)
	}
	if snap == nil {
		return "", fmt.Errorf("gantt view needs a snapshot")
	}
	return hashSnapshot(snap)
}

func rejectedError(snap *layout.Snapshot) error {
	if len(snap.Rejected) == 0 {
		return nil
	}
	return &errors.RejectedTasksError{Tasks: snap.Rejected}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
