package orchestrator

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
)

// Agent names, which are also the graph node names and the route keys.
const (
	AgentSource      = "source"
	AgentUsage       = "usage"
	AgentPermissions = "permissions"
)

// Agents lists every analysis agent in report order.
var Agents = []string{AgentSource, AgentUsage, AgentPermissions}

// Report statuses.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
)

// Request is the inbound /process request. Fields are optional context for
// the agents and are not validated as a form.
type Request struct {
	Message    string           `json:"message" validate:"required"`
	FormFields []form.FormField `json:"form_fields,omitempty"`
}

// UnmarshalJSON accepts the formFields alias.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	var aux struct {
		plain
		FieldsAlias []form.FormField `json:"formFields"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Request(aux.plain)
	if len(r.FormFields) == 0 && len(aux.FieldsAlias) > 0 {
		r.FormFields = aux.FieldsAlias
	}
	return nil
}

var validate = validator.New()

// DecodeRequest reads and checks a /process request. Failures match
// form.ErrInvalidRequest.
func DecodeRequest(rd io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(rd).Decode(&req); err != nil {
		return nil, &form.RequestError{Problems: []string{"malformed JSON: " + err.Error()}}
	}
	if err := validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, &form.RequestError{Problems: []string{"message: is required"}}
		}
		return nil, &form.RequestError{Problems: []string{err.Error()}}
	}
	return &req, nil
}

// Routing is the orchestrator's decision.
type Routing struct {
	Routes         []string `json:"route"`
	Clarifications []string `json:"clarifications"`
	Analysis       string   `json:"analysis"`
}

// Detection is one keyword found in the message.
type Detection struct {
	Keyword     string `json:"keyword"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
}

// FieldRef is a form field an agent considers its own.
type FieldRef struct {
	DataID string         `json:"data_id"`
	Label  string         `json:"label"`
	Type   form.FieldType `json:"type"`
	Value  string         `json:"value"`
}

// Suggestion proposes a value for a form field. Confidence is in [0,1].
type Suggestion struct {
	FieldID    string  `json:"fieldId"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	Agent      string  `json:"agent"`
}

// Estimate is a rough quantity for a detected usage.
type Estimate struct {
	Usage    string `json:"usage"`
	Estimate string `json:"estimate"`
}

// Report is the output of one agent.
type Report struct {
	Agent            string       `json:"agent"`
	Status           string       `json:"status"`
	Query            string       `json:"query"`
	Detected         []Detection  `json:"detected,omitempty"`
	Fields           []FieldRef   `json:"fields,omitempty"`
	Suggestions      []Suggestion `json:"suggestions,omitempty"`
	Estimates        []Estimate   `json:"quantity_estimates,omitempty"`
	Recommendations  []string     `json:"recommendations,omitempty"`
	Analysis         string       `json:"analysis,omitempty"`
	ProcessingMethod string       `json:"processing_method,omitempty"`
	Message          string       `json:"message"`
}

// ProcessState is threaded through the routing graph. Agents write their
// report under their own name.
type ProcessState struct {
	Message string            `json:"message"`
	Fields  []form.FormField  `json:"form_fields,omitempty"`
	Routing Routing           `json:"orchestrator_output"`
	Reports map[string]Report `json:"reports,omitempty"`
	Summary Summary           `json:"workflow_summary"`
}

// NewSchema merges agent reports by key; everything else is overwritten by
// non-zero values.
func NewSchema() *graph.FieldMerger[ProcessState] {
	s := graph.NewFieldMerger(ProcessState{})
	s.RegisterFieldMerge("Reports", graph.MapUnionMerge)
	return s
}

// Summary counts what the agents did.
type Summary struct {
	TotalAgents    int  `json:"total_agents"`
	ExecutedAgents int  `json:"executed_agents"`
	SkippedAgents  int  `json:"skipped_agents"`
	RuleBased      int  `json:"rule_based_agents"`
	Suggestions    int  `json:"suggestions"`
	HasErrors      bool `json:"has_errors"`
}

// Data is the payload of a successful /process response.
type Data struct {
	Orchestrator Routing `json:"orchestrator_output"`
	Source       Report  `json:"source_output"`
	Permissions  Report  `json:"permissions_output"`
	Usage        Report  `json:"usage_output"`
	Summary      Summary `json:"workflow_summary"`
	ProcessedAt  string  `json:"processed_at"`
}

// Response is the /process response envelope.
type Response struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      Data   `json:"data"`
	Timestamp string `json:"timestamp"`
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
