// Package metrics exposes Prometheus collectors for form runs.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/pipeline"
)

const namespace = "formgraph"

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	stageDuration     *prometheus.HistogramVec
	stageErrors       *prometheus.CounterVec
	inferenceFailures *prometheus.CounterVec
	runs              *prometheus.CounterVec
	confidence        prometheus.Histogram

	mu      sync.Mutex
	started map[string]time.Time
}

// New creates collectors registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started:  make(map[string]time.Time),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that returned an error",
		}, []string{"stage"}),
		inferenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_failures_total",
			Help:      "Inference calls that degraded to no result",
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs by status",
		}, []string{"status"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Confidence score of completed runs",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
	m.registry.MustRegister(
		m.requests, m.requestDuration, m.stageDuration, m.stageErrors,
		m.inferenceFailures, m.runs, m.confidence,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// InferenceFailure counts a degraded inference call. It matches
// pipeline.Options.OnInferenceFailure.
func (m *Metrics) InferenceFailure(stage pipeline.Stage, _ error) {
	m.inferenceFailures.WithLabelValues(string(stage)).Inc()
}

// ObserveRun records the outcome of a completed run.
func (m *Metrics) ObserveRun(resp *pipeline.Response) {
	if resp == nil {
		return
	}
	m.runs.WithLabelValues(string(resp.Status)).Inc()
	m.confidence.Observe(resp.Result.ConfidenceScore)
}

// OnNodeEvent implements graph.NodeListener and times every stage.
func (m *Metrics) OnNodeEvent(ctx context.Context, event graph.NodeEvent, nodeName string, _ pipeline.FormRunState, _ error) {
	key := graph.RunIDFromContext(ctx) + "/" + nodeName

	switch event {
	case graph.NodeEventStart:
		m.mu.Lock()
		m.started[key] = time.Now()
		m.mu.Unlock()
	case graph.NodeEventComplete, graph.NodeEventError:
		m.mu.Lock()
		start, ok := m.started[key]
		delete(m.started, key)
		m.mu.Unlock()
		if ok {
			m.stageDuration.WithLabelValues(nodeName).Observe(time.Since(start).Seconds())
		}
		if event == graph.NodeEventError {
			m.stageErrors.WithLabelValues(nodeName).Inc()
		}
	}
}

var _ graph.NodeListener[pipeline.FormRunState] = (*Metrics)(nil)
