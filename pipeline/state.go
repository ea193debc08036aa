package pipeline

import (
	"github.com/smallnest/formgraph/agents"
	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
)

// Stage is the workflow stage marker.
type Stage string

const (
	StageNormalize    Stage = "normalize"
	StageAnalyze      Stage = "analyze"
	StageExtract      Stage = "extract_info"
	StageAutoFill     Stage = "auto_fill"
	StageValidate     Stage = "validate"
	StageAskQuestions Stage = "ask_questions"
	StageComplete     Stage = "complete"
)

// Status is the completion decision.
type Status string

const (
	StatusComplete  Status = "complete"
	StatusNeedsInfo Status = "needs_info"
)

// FormRunState is the state threaded through one pipeline execution. Stages
// return partial states that the schema merges into it.
type FormRunState struct {
	RunID       string                      `json:"run_id"`
	Message     string                      `json:"message"`
	Fields      []form.FormField            `json:"form_fields"`
	UserContext map[string]any              `json:"user_context,omitempty"`
	Candidates  map[string]agents.Candidate `json:"candidates,omitempty"`
	Filled      map[string]string           `json:"filled_fields,omitempty"`
	Sources     map[string]agents.Tier      `json:"sources,omitempty"`
	Missing     []string                    `json:"missing_information,omitempty"`
	Violations  []form.ValidationError      `json:"validation_errors,omitempty"`
	Questions   []string                    `json:"questions_for_user,omitempty"`
	Suggestions []string                    `json:"suggestions,omitempty"`
	Confidence  float64                     `json:"confidence_score"`
	Analysis    form.Analysis               `json:"analysis"`
	Stage       Stage                       `json:"workflow_state"`
	Status      Status                      `json:"status,omitempty"`
}

// NewSchema returns the merge schema of FormRunState: maps union, findings
// append, everything else is overwritten by non-zero values.
func NewSchema() *graph.FieldMerger[FormRunState] {
	s := graph.NewFieldMerger(FormRunState{})
	for _, f := range []string{"Candidates", "Filled", "Sources"} {
		s.RegisterFieldMerge(f, graph.MapUnionMerge)
	}
	for _, f := range []string{"Missing", "Violations", "Questions", "Suggestions"} {
		s.RegisterFieldMerge(f, graph.AppendSliceMerge)
	}
	return s
}
