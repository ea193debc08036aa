package pipeline

import (
	"context"
	"errors"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/log"
)

func (p *Pipeline) buildGraph() *graph.StateGraph[FormRunState] {
	g := graph.NewStateGraph[FormRunState]()
	g.SetSchema(NewSchema())

	g.AddNode(string(StageNormalize), "Strip markup and whitespace from the input", p.normalize)
	g.AddNode(string(StageAnalyze), "Form Analysis - Understand structure and requirements", p.analyze)
	g.AddNode(string(StageExtract), "Information Extraction - Parse user input for relevant data",
		p.guard(StageExtract, p.extract, p.extractDegraded))
	g.AddNode(string(StageAutoFill), "Auto-Fill - Populate fields based on extracted information", p.autoFill)
	g.AddNode(string(StageValidate), "Validation - Check data completeness and correctness", p.validate)
	g.AddNode(string(StageAskQuestions), "Question Generation - Create questions for missing information",
		p.guard(StageAskQuestions, p.askQuestions, p.askQuestionsDegraded))
	g.AddNode(string(StageComplete), "Finish the run", p.complete)

	g.SetEntryPoint(string(StageNormalize))
	g.AddEdge(string(StageNormalize), string(StageAnalyze))
	g.AddEdge(string(StageAnalyze), string(StageExtract))
	g.AddEdge(string(StageExtract), string(StageAutoFill))
	g.AddEdge(string(StageAutoFill), string(StageValidate))
	g.AddConditionalEdge(string(StageValidate), decide, string(StageAskQuestions), string(StageComplete))
	g.AddEdge(string(StageAskQuestions), string(StageComplete))
	g.AddEdge(string(StageComplete), graph.END)
	return g
}

// guard bounds an inference-backed stage by the stage timeout. When the
// budget runs out while the request is still live, the failure hook fires and
// fallback supplies the stage's delta.
func (p *Pipeline) guard(stage Stage, fn, fallback graph.NodeFunc[FormRunState]) graph.NodeFunc[FormRunState] {
	bounded := graph.WithTimeout(string(stage), fn, p.stage)
	return func(ctx context.Context, s FormRunState) (FormRunState, error) {
		out, err := bounded(ctx, s)
		if errors.Is(err, graph.ErrNodeTimeout) {
			log.Warn("stage %s degraded: %v", stage, err)
			p.degraded(stage, err)
			return fallback(ctx, s)
		}
		return out, err
	}
}

// decide is the completion decision: complete iff nothing is missing and
// nothing is violated.
func decide(_ context.Context, s FormRunState) string {
	if s.Status == StatusComplete {
		return string(StageComplete)
	}
	return string(StageAskQuestions)
}

func (p *Pipeline) normalize(_ context.Context, s FormRunState) (FormRunState, error) {
	msg, fields := p.normalizer.Normalize(s.Message, s.Fields)
	return FormRunState{Message: msg, Fields: fields, Stage: StageNormalize}, nil
}

func (p *Pipeline) analyze(_ context.Context, s FormRunState) (FormRunState, error) {
	return FormRunState{Analysis: form.Analyze(s.Fields, p.rules), Stage: StageAnalyze}, nil
}

func (p *Pipeline) extract(ctx context.Context, s FormRunState) (FormRunState, error) {
	candidates := p.extractor.Extract(ctx, s.Message, s.Fields)
	return FormRunState{Candidates: candidates, Stage: StageExtract}, nil
}

func (p *Pipeline) autoFill(_ context.Context, s FormRunState) (FormRunState, error) {
	res := p.filler.Fill(s.Fields, s.Candidates, s.UserContext)
	inactive := p.rules.Inactive(res.Fields)
	return FormRunState{
		Fields:     res.Fields,
		Filled:     res.Filled,
		Sources:    res.Sources,
		Confidence: p.policy.Score(res.Fields, res.Sources, inactive),
		Stage:      StageAutoFill,
	}, nil
}

func (p *Pipeline) validate(_ context.Context, s FormRunState) (FormRunState, error) {
	res := form.Validate(s.Fields, p.rules)
	status := StatusNeedsInfo
	if res.Complete() {
		status = StatusComplete
	}
	return FormRunState{
		Missing:    res.Missing,
		Violations: res.Violations,
		Analysis:   form.Analyze(s.Fields, p.rules),
		Status:     status,
		Stage:      StageValidate,
	}, nil
}

// extractDegraded contributes no candidates; auto-fill still applies the
// caller's context and the rule table.
func (p *Pipeline) extractDegraded(_ context.Context, _ FormRunState) (FormRunState, error) {
	return FormRunState{Stage: StageExtract}, nil
}

func (p *Pipeline) askQuestionsDegraded(ctx context.Context, s FormRunState) (FormRunState, error) {
	return FormRunState{
		Questions:   p.templates.Generate(ctx, s.Fields, s.Missing, s.Violations),
		Suggestions: p.templates.Suggestions(s.Fields),
		Stage:       StageAskQuestions,
	}, nil
}

func (p *Pipeline) askQuestions(ctx context.Context, s FormRunState) (FormRunState, error) {
	return FormRunState{
		Questions:   p.questions.Generate(ctx, s.Fields, s.Missing, s.Violations),
		Suggestions: p.questions.Suggestions(s.Fields),
		Stage:       StageAskQuestions,
	}, nil
}

func (p *Pipeline) complete(_ context.Context, s FormRunState) (FormRunState, error) {
	out := FormRunState{Stage: StageComplete}
	if s.Status == StatusComplete {
		out.Suggestions = p.questions.Suggestions(s.Fields)
	}
	return out, nil
}
