package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/inference"
	"github.com/smallnest/formgraph/pipeline"
)

func TestMetrics_PipelineRun(t *testing.T) {
	m := New()
	broken := func(context.Context, string, []form.FormField) (map[string]string, error) {
		return nil, errors.New("unavailable")
	}
	p, err := pipeline.New(pipeline.Options{
		Inferer:            inference.InfererFunc(broken),
		Listeners:          []graph.NodeListener[pipeline.FormRunState]{m},
		OnInferenceFailure: m.InferenceFailure,
	})
	require.NoError(t, err)

	resp, err := p.Run(context.Background(), &form.Request{Message: "x", FormFields: form.ExampleFields()})
	require.NoError(t, err)
	m.ObserveRun(resp)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.inferenceFailures.WithLabelValues("extract_info")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("needs_info")))
	assert.Equal(t, 7, testutil.CollectAndCount(m.stageDuration))
	assert.Empty(t, m.started)
}

func TestMetrics_StageError(t *testing.T) {
	m := New()
	ctx := graph.WithConfig(context.Background(), &graph.Config{RunID: "r1"})
	m.OnNodeEvent(ctx, graph.NodeEventStart, "validate", pipeline.FormRunState{}, nil)
	m.OnNodeEvent(ctx, graph.NodeEventError, "validate", pipeline.FormRunState{}, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageErrors.WithLabelValues("validate")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest("/agenticai/fill-form", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `formgraph_http_requests_total{code="200",route="/agenticai/fill-form"} 1`), body)
}
