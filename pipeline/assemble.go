package pipeline

import (
	"github.com/smallnest/formgraph/form"
)

const (
	nextActionNeedsInfo = "Please provide the requested information to complete the form"
	nextActionComplete  = "Form is ready for submission"
)

// Result is the outcome of one run.
type Result struct {
	Status               Status                 `json:"status"`
	FilledFields         map[string]string      `json:"filled_fields"`
	MissingInformation   []string               `json:"missing_information"`
	ValidationErrors     []form.ValidationError `json:"validation_errors"`
	Suggestions          []string               `json:"suggestions"`
	QuestionsForUser     []string               `json:"questions_for_user"`
	ConfidenceScore      float64                `json:"confidence_score"`
	CompletionPercentage float64                `json:"completion_percentage"`
	Fields               []form.FormField       `json:"form_fields"`
}

// Response is returned to the caller of Run.
type Response struct {
	Status        Status `json:"status"`
	RunID         string `json:"run_id"`
	Result        Result `json:"result"`
	WorkflowState Stage  `json:"workflow_state"`
	NextAction    string `json:"next_action"`
}

// Assemble builds the response from a final state. The confidence penalty for
// violations is applied here, after validation.
func (p *Pipeline) Assemble(s FormRunState) *Response {
	status := s.Status
	if status == "" {
		status = StatusNeedsInfo
	}
	next := nextActionNeedsInfo
	if status == StatusComplete {
		next = nextActionComplete
	}

	return &Response{
		Status: status,
		RunID:  s.RunID,
		Result: Result{
			Status:               status,
			FilledFields:         nonNilMap(s.Filled),
			MissingInformation:   nonNil(s.Missing),
			ValidationErrors:     nonNil(s.Violations),
			Suggestions:          nonNil(s.Suggestions),
			QuestionsForUser:     nonNil(s.Questions),
			ConfidenceScore:      p.policy.Penalize(s.Confidence, len(s.Violations)),
			CompletionPercentage: s.Analysis.CompletionPercentage,
			Fields:               nonNil(s.Fields),
		},
		WorkflowState: s.Stage,
		NextAction:    next,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
