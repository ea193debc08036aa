package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// StateGraph represents a generic state-based graph with compile-time type safety.
// The type parameter S represents the state type, which is typically a struct.
//
// Example usage:
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, state MyState) (MyState, error) {
//	    state.Count++
//	    return state, nil
//	})
type StateGraph[S any] struct {
	nodes map[string]TypedNode[S]

	// order keeps node names in insertion order for exports
	order []string

	edges []Edge

	// conditionalEdges maps a "from" node to the function choosing its successors
	conditionalEdges map[string]func(ctx context.Context, state S) []string

	// conditionalTargets lists the possible successors of a conditional edge, for exports only
	conditionalTargets map[string][]string

	entryPoint string

	// Schema defines the state structure and update logic
	Schema StateSchemaTyped[S]
}

// NewStateGraph creates a new instance of StateGraph with type safety.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:              make(map[string]TypedNode[S]),
		conditionalEdges:   make(map[string]func(ctx context.Context, state S) []string),
		conditionalTargets: make(map[string][]string),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn NodeFunc[S]) {
	if _, ok := g.nodes[name]; !ok {
		g.order = append(g.order, name)
	}
	g.nodes[name] = TypedNode[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds a conditional edge where the target node is determined at runtime.
// targets optionally lists the nodes the condition can return; it is only used by the Exporter.
//
//	g.AddConditionalEdge("check", func(ctx context.Context, state MyState) string {
//	    if state.Count > 10 {
//	        return "high"
//	    }
//	    return "low"
//	}, "high", "low")
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string, targets ...string) {
	g.AddConditionalFanOut(from, func(ctx context.Context, state S) []string {
		return []string{condition(ctx, state)}
	}, targets...)
}

// AddConditionalFanOut adds a conditional edge that may select several
// successors. The selected nodes run concurrently in the next step and their
// results are merged in the order the router returned them.
//
//	g.AddConditionalFanOut("route", func(ctx context.Context, state MyState) []string {
//	    return state.Routes
//	}, "a", "b", "c")
func (g *StateGraph[S]) AddConditionalFanOut(from string, router func(ctx context.Context, state S) []string, targets ...string) {
	g.conditionalEdges[from] = router
	if len(targets) > 0 {
		g.conditionalTargets[from] = targets
	}
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema for the graph.
func (g *StateGraph[S]) SetSchema(schema StateSchemaTyped[S]) {
	g.Schema = schema
}

// Nodes returns the nodes in insertion order.
func (g *StateGraph[S]) Nodes() []TypedNode[S] {
	out := make([]TypedNode[S], 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// StateRunnable represents a compiled state graph that can be invoked with type safety.
type StateRunnable[S any] struct {
	graph     *StateGraph[S]
	tracer    *Tracer
	listeners []NodeListener[S]
}

// Compile checks the graph and returns a StateRunnable instance.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok && e.To != END {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, e.To)
		}
	}

	return &StateRunnable[S]{graph: g}, nil
}

// Graph returns the graph the runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] {
	return r.graph
}

// SetTracer sets a tracer for observability.
func (r *StateRunnable[S]) SetTracer(tracer *Tracer) {
	r.tracer = tracer
}

// GetTracer returns the current tracer.
func (r *StateRunnable[S]) GetTracer() *Tracer {
	return r.tracer
}

// AddListener registers a listener for node events. Listeners that also
// implement StepListener receive the merged state after each step.
// Not safe to call concurrently with Invoke.
func (r *StateRunnable[S]) AddListener(l NodeListener[S]) {
	r.listeners = append(r.listeners, l)
}

// Invoke executes the compiled state graph with the given input state.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the compiled state graph with the given input state and config.
func (r *StateRunnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	var zero S
	state := initialState

	if r.graph.Schema != nil {
		var err error
		state, err = r.graph.Schema.Update(r.graph.Schema.Init(), initialState)
		if err != nil {
			return zero, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	if config == nil {
		config = &Config{}
	}
	if config.RunID == "" {
		config.RunID = generateRunID()
	}
	ctx = WithConfig(ctx, config)

	var graphSpan *TraceSpan
	if r.tracer != nil {
		graphSpan = r.tracer.StartSpan(ctx, TraceEventGraphStart, "graph")
		graphSpan.State = initialState
		ctx = ContextWithSpan(ctx, graphSpan)
	}

	finish := func(err error) {
		if graphSpan != nil {
			r.tracer.EndSpan(ctx, graphSpan, state, err)
		}
	}

	currentNodes := []string{r.graph.entryPoint}
	for len(currentNodes) > 0 {
		currentNodes = slices.DeleteFunc(currentNodes, func(n string) bool { return n == END })
		if len(currentNodes) == 0 {
			break
		}

		if err := ctx.Err(); err != nil {
			finish(err)
			return zero, err
		}

		results, errs := r.executeNodesParallel(ctx, currentNodes, state)
		if err := errors.Join(errs...); err != nil {
			finish(err)
			return zero, err
		}

		var err error
		state, err = r.mergeState(state, results)
		if err != nil {
			finish(err)
			return zero, err
		}

		next, err := r.determineNextNodes(ctx, currentNodes, state)
		if err != nil {
			finish(err)
			return zero, err
		}

		stepName := currentNodes[0]
		if len(currentNodes) > 1 {
			stepName = strings.Join(currentNodes, ",")
		}
		r.notifyStep(ctx, stepName, state)

		currentNodes = next
	}

	finish(nil)
	return state, nil
}

// executeNodesParallel executes the given nodes concurrently and returns their
// results and errors in input order.
func (r *StateRunnable[S]) executeNodesParallel(ctx context.Context, nodes []string, state S) ([]S, []error) {
	results := make([]S, len(nodes))
	errs := make([]error, len(nodes))

	run := func(i int, node TypedNode[S]) {
		var span *TraceSpan
		nodeCtx := ctx
		if r.tracer != nil {
			span = r.tracer.StartSpan(ctx, TraceEventNodeStart, node.Name)
			span.State = state
			nodeCtx = ContextWithSpan(ctx, span)
		}

		r.notify(nodeCtx, NodeEventStart, node.Name, state, nil)
		res, err := node.Function(nodeCtx, state)

		if span != nil {
			r.tracer.EndSpan(ctx, span, res, err)
		}
		if err != nil {
			r.notify(nodeCtx, NodeEventError, node.Name, state, err)
			errs[i] = fmt.Errorf("error in node %s: %w", node.Name, err)
			return
		}
		r.notify(nodeCtx, NodeEventComplete, node.Name, res, nil)
		results[i] = res
	}

	if len(nodes) == 1 {
		node, ok := r.graph.nodes[nodes[0]]
		if !ok {
			errs[0] = fmt.Errorf("%w: %s", ErrNodeNotFound, nodes[0])
			return results, errs
		}
		run(0, node)
		return results, errs
	}

	var wg sync.WaitGroup
	for i, name := range nodes {
		node, ok := r.graph.nodes[name]
		if !ok {
			errs[i] = fmt.Errorf("%w: %s", ErrNodeNotFound, name)
			continue
		}
		SafeGo(&wg, func() {
			run(i, node)
		}, func(p any) {
			errs[i] = fmt.Errorf("panic in node %s: %v", name, p)
		})
	}
	wg.Wait()
	return results, errs
}

// mergeState merges the node results into the current state. Without a schema
// the last result wins.
func (r *StateRunnable[S]) mergeState(current S, results []S) (S, error) {
	if r.graph.Schema == nil {
		if len(results) > 0 {
			return results[len(results)-1], nil
		}
		return current, nil
	}

	state := current
	for _, res := range results {
		var err error
		state, err = r.graph.Schema.Update(state, res)
		if err != nil {
			return current, fmt.Errorf("schema update failed: %w", err)
		}
	}
	return state, nil
}

// determineNextNodes resolves the successors of the nodes that just ran.
func (r *StateRunnable[S]) determineNextNodes(ctx context.Context, currentNodes []string, state S) ([]string, error) {
	var next []string
	seen := make(map[string]bool)
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			next = append(next, n)
		}
	}

	for _, nodeName := range currentNodes {
		if cond, ok := r.graph.conditionalEdges[nodeName]; ok {
			targets := cond(ctx, state)
			if len(targets) == 0 {
				return nil, fmt.Errorf("conditional edge returned empty next node from %s", nodeName)
			}
			for _, target := range targets {
				if target == "" {
					return nil, fmt.Errorf("conditional edge returned empty next node from %s", nodeName)
				}
				if _, ok := r.graph.nodes[target]; !ok && target != END {
					return nil, fmt.Errorf("%w: %s (from %s)", ErrNodeNotFound, target, nodeName)
				}
				if r.tracer != nil {
					r.tracer.TraceEdgeTraversal(ctx, nodeName, target)
				}
				add(target)
			}
			continue
		}

		found := false
		for _, edge := range r.graph.edges {
			if edge.From == nodeName {
				if r.tracer != nil {
					r.tracer.TraceEdgeTraversal(ctx, nodeName, edge.To)
				}
				add(edge.To)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, nodeName)
		}
	}
	return next, nil
}
