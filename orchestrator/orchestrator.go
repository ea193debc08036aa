package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/log"
)

// ErrTimeout is returned when a /process request exceeds its deadline.
var ErrTimeout = errors.New("request processing timed out")

const summarize = "summarize"

// routeTerms select an agent when any of them occurs in the message.
var routeTerms = map[string][]string{
	AgentSource:      {"source", "water source", "intake", "river", "lake", "stream", "creek", "well", "groundwater", "reservoir"},
	AgentUsage:       {"usage", "purpose", "use", "irrigation", "industrial", "domestic", "livestock"},
	AgentPermissions: {"permission", "permit", "license", "licence", "compliance", "exempt", "regulation"},
}

// Options configures an Orchestrator.
type Options struct {
	// Timeout bounds a whole request. Zero means no deadline.
	Timeout time.Duration
	Tracer  *graph.Tracer
}

// Orchestrator routes a free-text request to the source, usage and
// permissions agents and runs the selected agents concurrently.
type Orchestrator struct {
	graph    *graph.StateGraph[ProcessState]
	runnable *graph.StateRunnable[ProcessState]
	timeout  time.Duration
	now      func() time.Time
}

// New builds and compiles the routing graph.
func New(opts Options) (*Orchestrator, error) {
	o := &Orchestrator{timeout: opts.Timeout, now: time.Now}

	g := graph.NewStateGraph[ProcessState]()
	g.SetSchema(NewSchema())
	g.AddNode("orchestrator", "Route the request to the analysis agents", o.route)
	g.AddNode(AgentSource, "Source analysis - water sources and intake fields", agentNode(AgentSource, analyzeSource))
	g.AddNode(AgentUsage, "Usage analysis - purposes and quantity estimates", agentNode(AgentUsage, analyzeUsage))
	g.AddNode(AgentPermissions, "Permissions analysis - compliance and fee exemption suggestions", agentNode(AgentPermissions, analyzePermissions))
	g.AddNode(summarize, "Count executed and skipped agents", o.summarize)

	g.SetEntryPoint("orchestrator")
	g.AddConditionalFanOut("orchestrator", selectAgents, Agents...)
	for _, a := range Agents {
		g.AddEdge(a, summarize)
	}
	g.AddEdge(summarize, graph.END)

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator: %w", err)
	}
	if opts.Tracer != nil {
		runnable.SetTracer(opts.Tracer)
	}
	o.graph = g
	o.runnable = runnable
	return o, nil
}

// Graph returns the routing graph, for export.
func (o *Orchestrator) Graph() *graph.StateGraph[ProcessState] {
	return o.graph
}

// Process runs the routing graph for one request.
func (o *Orchestrator) Process(ctx context.Context, req *Request) (*Response, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	cfg := &graph.Config{Metadata: map[string]any{"fields": len(req.FormFields)}}
	final, err := o.runnable.InvokeWithConfig(ctx, ProcessState{Message: req.Message, Fields: req.FormFields}, cfg)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v", ErrTimeout, o.timeout)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("process %s: %w", cfg.RunID, err)
	}
	log.Info("process %s routed to %s", cfg.RunID, strings.Join(final.Routing.Routes, ","))

	now := timestamp(o.now())
	return &Response{
		Status:  StatusSuccess,
		Message: "Request processed successfully by agentic workflow",
		Data: Data{
			Orchestrator: final.Routing,
			Source:       reportOrSkipped(final, AgentSource),
			Permissions:  reportOrSkipped(final, AgentPermissions),
			Usage:        reportOrSkipped(final, AgentUsage),
			Summary:      final.Summary,
			ProcessedAt:  now,
		},
		Timestamp: now,
	}, nil
}

// route picks the agents whose terms occur in the message. With no match
// every agent runs.
func (o *Orchestrator) route(_ context.Context, s ProcessState) (ProcessState, error) {
	lowered := strings.ToLower(s.Message)
	var routes []string
	for _, a := range Agents {
		if slices.ContainsFunc(routeTerms[a], func(t string) bool { return strings.Contains(lowered, t) }) {
			routes = append(routes, a)
		}
	}

	r := Routing{Clarifications: []string{}}
	if len(routes) == 0 {
		routes = slices.Clone(Agents)
		r.Analysis = "No specific routes found, using all agents"
		r.Clarifications = append(r.Clarifications, "Please provide more specific information")
	} else {
		r.Analysis = "Routed by keywords: " + strings.Join(routes, ", ")
	}
	r.Routes = routes
	log.Debug("routing to agents: %v", routes)
	return ProcessState{Routing: r}, nil
}

func selectAgents(_ context.Context, s ProcessState) []string {
	if len(s.Routing.Routes) == 0 {
		return []string{graph.END}
	}
	return s.Routing.Routes
}

func agentNode(name string, analyze func(string, []form.FormField) Report) graph.NodeFunc[ProcessState] {
	return func(_ context.Context, s ProcessState) (ProcessState, error) {
		return ProcessState{Reports: map[string]Report{name: analyze(s.Message, s.Fields)}}, nil
	}
}

func (o *Orchestrator) summarize(_ context.Context, s ProcessState) (ProcessState, error) {
	sum := Summary{TotalAgents: len(Agents)}
	for _, a := range Agents {
		r, ok := s.Reports[a]
		if !ok {
			sum.SkippedAgents++
			continue
		}
		sum.ExecutedAgents++
		if r.ProcessingMethod == "rule_based" {
			sum.RuleBased++
		}
		if r.Status != StatusSuccess {
			sum.HasErrors = true
		}
		sum.Suggestions += len(r.Suggestions)
	}
	return ProcessState{Summary: sum}, nil
}

func reportOrSkipped(s ProcessState, name string) Report {
	if r, ok := s.Reports[name]; ok {
		return r
	}
	return Report{
		Agent:   strings.ToUpper(name[:1]) + name[1:] + "Agent",
		Status:  StatusSkipped,
		Query:   s.Message,
		Message: "Agent was not routed to based on orchestrator decision",
	}
}
