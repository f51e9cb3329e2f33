package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
	gio "github.com/doyel/gantt/pkg/io"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/layout/route"
	"github.com/doyel/gantt/pkg/pipeline"
)

// Request is the body every /v1 endpoint accepts.
type Request struct {
	Dataset  json.RawMessage `json:"dataset"`
	Viewport *gantt.Window   `json:"viewport,omitempty"`
	Config   *RequestConfig  `json:"config,omitempty"`
}

// RequestConfig overrides the server's configured options for one request.
// Zero values keep the server's setting.
type RequestConfig struct {
	PixelsPerHour float64 `json:"pixels_per_hour,omitempty"`
	RowHeight     float64 `json:"row_height,omitempty"`
	LeftGutter    float64 `json:"left_gutter,omitempty"`
	MinBarWidth   float64 `json:"min_bar_width,omitempty"`
	Router        string  `json:"router,omitempty"`
	Duplicates    string  `json:"duplicates,omitempty"`
	Timezone      string  `json:"timezone,omitempty"`
	VizType       string  `json:"viz_type,omitempty"`
	Style         string  `json:"style,omitempty"`
	ShowHours     *bool   `json:"show_hours,omitempty"`
	ShowToday     *bool   `json:"show_today,omitempty"`
}

// decode reads the body into a dataset and per-request options. The
// request viewport replaces any window carried by the dataset.
func (s *Server) decode(r *http.Request) (*gantt.Dataset, pipeline.Options, error) {
	opts := s.base
	opts.Formats = append([]string(nil), s.base.Formats...)

	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, opts, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	if len(req.Dataset) == 0 || string(req.Dataset) == "null" {
		return nil, opts, errors.New(errors.ErrCodeInvalidInput, "dataset is required")
	}

	ds, err := gio.DecodeJSON(req.Dataset)
	if err != nil {
		return nil, opts, err
	}
	if req.Viewport != nil {
		ds.Viewport = req.Viewport
	}
	if req.Config != nil {
		if err := req.Config.apply(&opts); err != nil {
			return nil, opts, err
		}
	}
	return ds, opts, nil
}

func (c *RequestConfig) apply(opts *pipeline.Options) error {
	for name, v := range map[string]float64{
		"pixels_per_hour": c.PixelsPerHour,
		"row_height":      c.RowHeight,
		"left_gutter":     c.LeftGutter,
		"min_bar_width":   c.MinBarWidth,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "config.%s must not be negative, got %g", name, v)
		}
	}
	if c.PixelsPerHour > 0 {
		opts.Layout.PixelsPerHour = c.PixelsPerHour
	}
	if c.RowHeight > 0 {
		opts.Layout.RowHeight = c.RowHeight
	}
	if c.LeftGutter > 0 {
		opts.Layout.LeftGutter = c.LeftGutter
	}
	if c.MinBarWidth > 0 {
		opts.Layout.MinBarWidth = c.MinBarWidth
	}

	if c.Router != "" {
		router, err := route.ByName(c.Router)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "config.router")
		}
		opts.Layout.Router = router
	}
	if c.Duplicates != "" {
		policy, err := layout.ParseDuplicatePolicy(c.Duplicates)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "config.duplicates")
		}
		opts.Layout.Duplicates = policy
	}
	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "config.timezone")
		}
		opts.Layout.Location = loc
	}

	if c.VizType != "" {
		opts.VizType = strings.ToLower(c.VizType)
	}
	if c.Style != "" {
		opts.Style = strings.ToLower(c.Style)
	}
	if c.ShowHours != nil {
		opts.ShowHours = *c.ShowHours
	}
	if c.ShowToday != nil {
		opts.HideToday = !*c.ShowToday
	}
	return nil
}
