package pipeline

import (
	"github.com/smallnest/formgraph/form"
)

// ValidationReport is the validation-only outcome, without auto-fill.
type ValidationReport struct {
	Status                string                 `json:"status"`
	Analysis              form.Analysis          `json:"analysis"`
	ValidationErrors      []form.ValidationError `json:"validation_errors"`
	MissingFields         []string               `json:"missing_fields"`
	CompletionPercentage  float64                `json:"completion_percentage"`
	RequiredFieldsMissing int                    `json:"required_fields_missing"`
	TotalErrors           int                    `json:"total_errors"`
}

// Validate runs normalization, analysis and validation only.
func (p *Pipeline) Validate(req *form.Request) (*ValidationReport, error) {
	if req == nil {
		return nil, &form.RequestError{Problems: []string{"request is required"}}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, fields := p.normalizer.Normalize(req.Message, req.FormFields)
	analysis := form.Analyze(fields, p.rules)
	res := form.Validate(fields, p.rules)

	return &ValidationReport{
		Status:                "validation_complete",
		Analysis:              analysis,
		ValidationErrors:      res.Violations,
		MissingFields:         res.Missing,
		CompletionPercentage:  analysis.CompletionPercentage,
		RequiredFieldsMissing: len(analysis.MissingFields),
		TotalErrors:           len(res.Violations),
	}, nil
}
