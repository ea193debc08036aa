package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallnest/formgraph/agents"
	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/inference"
	"github.com/smallnest/formgraph/log"
	"github.com/smallnest/formgraph/store"
)

var (
	// ErrTimeout is returned when a request exceeds its deadline. No partial
	// state is returned with it.
	ErrTimeout = errors.New("form processing timed out")

	// ErrAuditDisabled is returned by Runs when no checkpoint store is configured.
	ErrAuditDisabled = errors.New("run audit is disabled")
)

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	Rules      *form.RuleTable
	Inferer    inference.Inferer
	Questioner inference.Questioner
	Policy     *agents.ConfidencePolicy

	// Timeout bounds a whole request. Zero means no deadline.
	Timeout time.Duration
	// StageTimeout bounds extract_info and ask_questions. A stage that runs
	// out of time degrades instead of failing the run. Zero means no bound.
	StageTimeout time.Duration
	// Concurrency > 1 fans extraction out per field.
	Concurrency int

	// Store, when set, receives a checkpoint of the run state after every stage.
	Store     store.CheckpointStore
	Listeners []graph.NodeListener[FormRunState]
	Tracer    *graph.Tracer

	// OnInferenceFailure is called with the stage name for every degraded
	// inference call.
	OnInferenceFailure func(stage Stage, err error)
}

// Pipeline runs the form filling graph.
type Pipeline struct {
	graph    *graph.StateGraph[FormRunState]
	runnable *graph.StateRunnable[FormRunState]
	rules    *form.RuleTable
	policy   agents.ConfidencePolicy
	timeout  time.Duration
	stage    time.Duration
	store    store.CheckpointStore
	failure  func(Stage, error)

	normalizer *agents.Normalizer
	extractor  *agents.Extractor
	filler     *agents.AutoFiller
	questions  *agents.QuestionGenerator
	templates  *agents.QuestionGenerator
}

// New builds and compiles the pipeline graph.
func New(opts Options) (*Pipeline, error) {
	p := &Pipeline{
		rules:      opts.Rules,
		policy:     agents.DefaultConfidencePolicy(),
		timeout:    opts.Timeout,
		stage:      opts.StageTimeout,
		store:      opts.Store,
		failure:    opts.OnInferenceFailure,
		normalizer: agents.NewNormalizer(),
	}
	if p.rules == nil {
		p.rules = form.DefaultRules()
	}
	if opts.Policy != nil {
		p.policy = *opts.Policy
	}

	failure := func(stage Stage) func(error) {
		return func(err error) { p.degraded(stage, err) }
	}
	p.extractor = agents.NewExtractor(opts.Inferer,
		agents.WithConcurrency(opts.Concurrency),
		agents.WithFailureHook(failure(StageExtract)))
	p.filler = agents.NewAutoFiller(p.rules)
	p.questions = agents.NewQuestionGenerator(opts.Questioner, p.rules, failure(StageAskQuestions))
	p.templates = agents.NewQuestionGenerator(nil, p.rules, nil)

	p.graph = p.buildGraph()
	runnable, err := p.graph.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}
	if opts.Tracer != nil {
		runnable.SetTracer(opts.Tracer)
	}
	for _, l := range opts.Listeners {
		runnable.AddListener(l)
	}
	if opts.Store != nil {
		runnable.AddListener(graph.NewCheckpointListener[FormRunState](opts.Store, nil))
	}
	p.runnable = runnable
	return p, nil
}

func (p *Pipeline) degraded(stage Stage, err error) {
	if p.failure != nil {
		p.failure(stage, err)
	}
}

// Graph returns the underlying state graph, for export.
func (p *Pipeline) Graph() *graph.StateGraph[FormRunState] {
	return p.graph
}

// Rules returns the rule table in use.
func (p *Pipeline) Rules() *form.RuleTable {
	return p.rules
}

// Run processes one request and assembles the response.
func (p *Pipeline) Run(ctx context.Context, req *form.Request) (*Response, error) {
	if req == nil {
		return nil, &form.RequestError{Problems: []string{"request is required"}}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cfg := &graph.Config{Metadata: map[string]any{"fields": len(req.FormFields)}}
	initial := FormRunState{
		Message:     req.Message,
		Fields:      form.Clone(req.FormFields),
		UserContext: req.UserContext,
	}

	start := time.Now()
	final, err := p.runnable.InvokeWithConfig(ctx, initial, cfg)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("run %s timed out after %v", cfg.RunID, time.Since(start))
			return nil, fmt.Errorf("%w after %v", ErrTimeout, p.timeout)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("run %s: %w", cfg.RunID, err)
	}
	final.RunID = cfg.RunID

	log.Info("run %s finished with status %s in %v", cfg.RunID, final.Status, time.Since(start))
	return p.Assemble(final), nil
}

// Runs returns the audit checkpoints of a run in stage order.
func (p *Pipeline) Runs(ctx context.Context, runID string) ([]*store.Checkpoint, error) {
	if p.store == nil {
		return nil, ErrAuditDisabled
	}
	cps, err := p.store.List(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(cps) == 0 {
		return nil, fmt.Errorf("%w: run %s", store.ErrNotFound, runID)
	}
	return cps, nil
}
