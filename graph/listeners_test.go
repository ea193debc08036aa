package graph

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/smallnest/formgraph/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	mu     sync.Mutex
	events []string
	steps  []string
}

func (l *recordingListener) OnNodeEvent(_ context.Context, event NodeEvent, nodeName string, _ counterState, _ error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, nodeName+":"+string(event))
}

func (l *recordingListener) OnGraphStep(_ context.Context, nodeName string, _ counterState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, nodeName)
}

func linearGraph(t *testing.T) *StateRunnable[counterState] {
	t.Helper()
	g := NewStateGraph[counterState]()
	g.AddNode("a", "", step("a"))
	g.AddNode("b", "", step("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.SetEntryPoint("a")
	app, err := g.Compile()
	require.NoError(t, err)
	return app
}

func TestListeners_NodeAndStepEvents(t *testing.T) {
	app := linearGraph(t)
	l := &recordingListener{}
	app.AddListener(l)

	_, err := app.Invoke(context.Background(), counterState{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a:start", "a:complete", "b:start", "b:complete"}, l.events)
	assert.Equal(t, []string{"a", "b"}, l.steps)
}

func TestListeners_ErrorEvent(t *testing.T) {
	g := NewStateGraph[counterState]()
	g.AddNode("a", "", func(context.Context, counterState) (counterState, error) {
		return counterState{}, errors.New("nope")
	})
	g.AddEdge("a", END)
	g.SetEntryPoint("a")
	app, err := g.Compile()
	require.NoError(t, err)

	var got []NodeEvent
	var gotErr error
	app.AddListener(NodeListenerFunc[counterState](func(_ context.Context, event NodeEvent, _ string, _ counterState, err error) {
		got = append(got, event)
		if err != nil {
			gotErr = err
		}
	}))

	_, err = app.Invoke(context.Background(), counterState{})
	require.Error(t, err)
	assert.Equal(t, []NodeEvent{NodeEventStart, NodeEventError}, got)
	assert.EqualError(t, gotErr, "nope")
}

func TestListeners_PanicDoesNotStopGraph(t *testing.T) {
	app := linearGraph(t)
	app.AddListener(NodeListenerFunc[counterState](func(context.Context, NodeEvent, string, counterState, error) {
		panic("listener bug")
	}))

	out, err := app.Invoke(context.Background(), counterState{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
}

func TestCheckpointListener_SavesEachStep(t *testing.T) {
	app := linearGraph(t)
	s := memory.NewMemoryCheckpointStore()
	app.AddListener(NewCheckpointListener[counterState](s, nil))

	_, err := app.InvokeWithConfig(context.Background(), counterState{}, &Config{
		RunID:    "run-1",
		Metadata: map[string]any{"source": "test"},
	})
	require.NoError(t, err)

	cps, err := s.List(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, cps, 2)

	assert.Equal(t, "a", cps[0].NodeName)
	assert.Equal(t, 1, cps[0].Version)
	assert.Equal(t, "b", cps[1].NodeName)
	assert.Equal(t, 2, cps[1].Version)
	assert.Equal(t, "test", cps[1].Metadata["source"])

	var last counterState
	require.NoError(t, json.Unmarshal(cps[1].State, &last))
	assert.Equal(t, 2, last.Count)
	assert.Equal(t, []string{"a", "b"}, last.Path)
}

func TestCheckpointListener_EncodeError(t *testing.T) {
	app := linearGraph(t)
	s := memory.NewMemoryCheckpointStore()
	cl := NewCheckpointListener(s, func(counterState) ([]byte, error) {
		return nil, errors.New("cannot encode")
	})
	var failures int
	cl.OnError = func(context.Context, string, error) { failures++ }
	app.AddListener(cl)

	_, err := app.InvokeWithConfig(context.Background(), counterState{}, &Config{RunID: "run-2"})
	require.NoError(t, err, "checkpoint failures never fail the run")
	assert.Equal(t, 2, failures)

	cps, err := s.List(context.Background(), "run-2")
	require.NoError(t, err)
	assert.Empty(t, cps)
}
