package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/pipeline"
)

// contentTypes maps artifact formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// BoundsResponse is the body of POST /v1/bounds. Start and End are
// omitted when no task has a valid range.
type BoundsResponse struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
	Empty bool       `json:"empty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ds, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// The snapshot is the response; rendering would be wasted work.
	opts.VizType = pipeline.VizTypeGantt
	opts.Formats = []string{pipeline.FormatJSON}
	res, err := s.runner.Execute(r.Context(), ds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, res)
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ds, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), ds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, res)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	ds, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vp := layout.MinMaxDates(ds, opts.Layout.WithDefaults().Location)
	resp := BoundsResponse{Empty: vp.Empty}
	if !vp.Empty {
		resp.Start, resp.End = &vp.Start, &vp.End
	}
	writeJSON(w, http.StatusOK, resp)
}

func setCacheHeaders(w http.ResponseWriter, res *pipeline.Result) {
	w.Header().Set("X-Gantt-Layout-Cache", hitOrMiss(res.CacheInfo.LayoutHit))
	w.Header().Set("X-Gantt-Render-Cache", hitOrMiss(res.CacheInfo.RenderHit))
	if n := len(res.Rejected); n > 0 {
		ids := make([]string, n)
		for i, t := range res.Rejected {
			ids[i] = t.TaskID
		}
		w.Header().Set("X-Gantt-Rejected", strings.Join(ids, ","))
	}
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Errors
// =============================================================================

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch {
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == errors.ErrCodeResourceNotFound, code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeDuplicateTaskID:
		return http.StatusConflict
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := StatusFor(code)
	msg := detail(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// detail is the user message plus the cause, without the code prefix.
func detail(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errors.UserMessage(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
