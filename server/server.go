// Package server exposes the form filling pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/log"
	"github.com/smallnest/formgraph/metrics"
	"github.com/smallnest/formgraph/orchestrator"
	"github.com/smallnest/formgraph/pipeline"
	"github.com/smallnest/formgraph/store"
)

const (
	// Prefix is the route prefix of the form filling API.
	Prefix = "/agenticai"

	fillFormPath = Prefix + "/fill-form"
)

// Server implements the HTTP handlers.
type Server struct {
	Pipeline     *pipeline.Pipeline
	Orchestrator *orchestrator.Orchestrator
	Metrics      *metrics.Metrics
}

// NewHandler creates the router. o may be nil, which disables /process; m
// may be nil, which disables /metrics.
func NewHandler(p *pipeline.Pipeline, o *orchestrator.Orchestrator, m *metrics.Metrics) http.Handler {
	s := &Server{Pipeline: p, Orchestrator: o, Metrics: m}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(s.instrument)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Get("/health", s.Health)
	r.Route(Prefix, func(r chi.Router) {
		r.Post("/fill-form", s.FillForm)
		r.Post("/validate-form", s.ValidateForm)
		r.Get("/example-form", s.ExampleForm)
		r.Get("/workflow-info", s.WorkflowInfo)
		r.Get("/runs/{runID}", s.Runs)
		if o != nil {
			r.Post("/process", s.Process)
		}
	})
	return r
}

// FillForm handles POST /agenticai/fill-form.
func (s *Server) FillForm(w http.ResponseWriter, r *http.Request) {
	req, err := form.DecodeRequest(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.Pipeline.Run(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.ObserveRun(resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ValidateForm handles POST /agenticai/validate-form.
func (s *Server) ValidateForm(w http.ResponseWriter, r *http.Request) {
	req, err := form.DecodeRequest(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := s.Pipeline.Validate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Process handles POST /agenticai/process.
func (s *Server) Process(w http.ResponseWriter, r *http.Request) {
	req, err := orchestrator.DecodeRequest(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.Orchestrator.Process(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExampleForm handles GET /agenticai/example-form.
func (s *Server) ExampleForm(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, form.ExampleRequest(fillFormPath))
}

// WorkflowInfo handles GET /agenticai/workflow-info.
func (s *Server) WorkflowInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, describeWorkflow(s.Pipeline))
}

// Runs handles GET /agenticai/runs/{runID}.
func (s *Server) Runs(w http.ResponseWriter, r *http.Request) {
	cps, err := s.Pipeline.Runs(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cps)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// instrument records request counts and latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.Metrics.ObserveRequest(route, code, time.Since(start))
	})
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, form.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: err.Error()})
	case errors.Is(err, pipeline.ErrTimeout):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Detail: "Form processing timed out"})
	case errors.Is(err, orchestrator.ErrTimeout):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Detail: "Request processing timed out"})
	case errors.Is(err, pipeline.ErrAuditDisabled), errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: err.Error()})
	default:
		log.Error("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Error processing form"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("response encode failed: %v", err)
	}
}
