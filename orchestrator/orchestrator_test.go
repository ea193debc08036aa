package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
)

func newOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	o, err := New(opts)
	require.NoError(t, err)
	return o
}

func TestProcess_RoutesByKeyword(t *testing.T) {
	o := newOrchestrator(t, Options{})
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return fixed }

	resp, err := o.Process(context.Background(), &Request{
		Message: "We need a permit to draw from the Fraser River, fee exemption yes, client number: CL-12345",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "2026-10-19T12:00:00Z", resp.Timestamp)
	assert.Equal(t, []string{AgentSource, AgentPermissions}, resp.Data.Orchestrator.Routes)
	assert.Empty(t, resp.Data.Orchestrator.Clarifications)

	assert.Equal(t, StatusSuccess, resp.Data.Source.Status)
	require.NotEmpty(t, resp.Data.Source.Detected)
	assert.Equal(t, "fraser river", resp.Data.Source.Detected[0].Keyword)

	assert.Equal(t, StatusSkipped, resp.Data.Usage.Status)
	assert.Equal(t, "UsageAgent", resp.Data.Usage.Agent)

	perms := resp.Data.Permissions
	assert.Equal(t, StatusSuccess, perms.Status)
	assert.Equal(t, []Suggestion{
		{FieldID: FieldEligible, Value: "Yes", Confidence: 0.85, Rationale: "Detected explicit yes/no regarding fee exemption.", Agent: "PermissionsAgent"},
		{FieldID: FieldClientNumber, Value: "CL-12345", Confidence: 0.9, Rationale: "Detected an explicit client number in the text.", Agent: "PermissionsAgent"},
	}, perms.Suggestions)

	assert.Equal(t, Summary{
		TotalAgents:    3,
		ExecutedAgents: 2,
		SkippedAgents:  1,
		RuleBased:      2,
		Suggestions:    2,
	}, resp.Data.Summary)
}

func TestProcess_NoKeywordsRunsAllAgents(t *testing.T) {
	o := newOrchestrator(t, Options{})

	resp, err := o.Process(context.Background(), &Request{Message: "hello there"})
	require.NoError(t, err)
	assert.Equal(t, Agents, resp.Data.Orchestrator.Routes)
	assert.Equal(t, []string{"Please provide more specific information"}, resp.Data.Orchestrator.Clarifications)
	assert.Equal(t, 3, resp.Data.Summary.ExecutedAgents)
	assert.Zero(t, resp.Data.Summary.SkippedAgents)
	for _, r := range []Report{resp.Data.Source, resp.Data.Usage, resp.Data.Permissions} {
		assert.Equal(t, StatusSuccess, r.Status, r.Agent)
		assert.Len(t, r.Recommendations, 1, r.Agent)
	}
	assert.Equal(t, "No compliance guidance found.", resp.Data.Permissions.Message)
}

func TestProcess_TracesEveryNode(t *testing.T) {
	tracer := graph.NewTracer()
	var mu sync.Mutex
	ended := map[string]bool{}
	tracer.AddHook(graph.TraceHookFunc(func(_ context.Context, span *graph.TraceSpan) {
		if span.Event == graph.TraceEventNodeEnd {
			mu.Lock()
			ended[span.NodeName] = true
			mu.Unlock()
		}
	}))
	o := newOrchestrator(t, Options{Tracer: tracer})

	_, err := o.Process(context.Background(), &Request{Message: "irrigation from a lake, permit under the water sustainability act"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	for _, n := range []string{"orchestrator", AgentSource, AgentUsage, AgentPermissions, summarize} {
		assert.True(t, ended[n], n)
	}
}

func TestProcess_UsageEstimatesAndFields(t *testing.T) {
	o := newOrchestrator(t, Options{})
	fields := []form.FormField{
		{DataID: "Purpose", Label: "Purpose of use", Type: form.FieldText},
		{DataID: "Intake", Label: "Intake location", Type: form.FieldText, Value: "north bank"},
		{DataID: "Permit", Label: "Existing permit number", Type: form.FieldText},
		{DataID: "Name", Label: "Name", Type: form.FieldText},
	}

	resp, err := o.Process(context.Background(), &Request{Message: "irrigation and livestock", FormFields: fields})
	require.NoError(t, err)

	usage := resp.Data.Usage
	assert.Equal(t, []Estimate{
		{Usage: "irrigation", Estimate: "2-5 acre-feet per acre annually"},
		{Usage: "livestock", Estimate: "Variable based on animal type and count"},
	}, usage.Estimates)
	require.Len(t, usage.Fields, 1)
	assert.Equal(t, "Purpose", usage.Fields[0].DataID)
	assert.Equal(t, StatusSkipped, resp.Data.Source.Status)
}

func TestProcess_Cancelled(t *testing.T) {
	o := newOrchestrator(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Process(ctx, &Request{Message: "irrigation"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGraphExport(t *testing.T) {
	o := newOrchestrator(t, Options{})
	out := graph.NewExporter(o.Graph()).DrawMermaid()
	for _, a := range Agents {
		assert.Contains(t, out, "orchestrator -.-> "+a)
		assert.Contains(t, out, a+" --> summarize")
	}
	assert.Contains(t, out, "summarize --> END")
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(`{
		"message": "need a permit",
		"formFields": [{"data_id": "Permit", "fieldLabel": "Permit", "fieldType": "text", "fieldValue": "P-1"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "need a permit", req.Message)
	require.Len(t, req.FormFields, 1)
	assert.Equal(t, "P-1", req.FormFields[0].Value)

	_, err = DecodeRequest(strings.NewReader(`{"message": ""}`))
	assert.ErrorIs(t, err, form.ErrInvalidRequest)
	assert.ErrorContains(t, err, "message: is required")

	_, err = DecodeRequest(strings.NewReader(`{`))
	assert.ErrorIs(t, err, form.ErrInvalidRequest)
}
