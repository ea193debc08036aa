package form

import "sort"

// Analysis summarises the structure of a form.
type Analysis struct {
	RequiredFields []string            `json:"required_fields"`
	OptionalFields []string            `json:"optional_fields"`
	MissingFields  []string            `json:"missing_fields"`
	Dependencies   map[string][]string `json:"field_dependencies"`
	InactiveFields []string            `json:"inactive_fields"`
	// CompletionPercentage is filled required / total required over relevant
	// fields, in [0,1]. It is 1 when no relevant field is required.
	CompletionPercentage float64 `json:"completion_percentage"`
}

// Analyze classifies fields, resolves dependencies from the rule table and
// computes the completion percentage. It does not modify fields.
func Analyze(fields []FormField, rules *RuleTable) Analysis {
	inactive := rules.Inactive(fields)

	a := Analysis{
		RequiredFields: []string{},
		OptionalFields: []string{},
		MissingFields:  []string{},
		Dependencies:   make(map[string][]string),
		InactiveFields: []string{},
	}

	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[f.DataID] = true
	}
	for controller, deps := range rules.Dependencies() {
		if !present[controller] {
			continue
		}
		var kept []string
		for _, d := range deps {
			if present[d] {
				kept = append(kept, d)
			}
		}
		if len(kept) > 0 {
			a.Dependencies[controller] = kept
		}
	}

	required, filled := 0, 0
	for _, f := range fields {
		if inactive[f.DataID] {
			a.InactiveFields = append(a.InactiveFields, f.DataID)
			continue
		}
		if !f.IsRequired() {
			a.OptionalFields = append(a.OptionalFields, f.DataID)
			continue
		}
		a.RequiredFields = append(a.RequiredFields, f.DataID)
		required++
		if f.IsEmpty() {
			a.MissingFields = append(a.MissingFields, f.DataID)
		} else {
			filled++
		}
	}

	a.CompletionPercentage = 1
	if required > 0 {
		a.CompletionPercentage = float64(filled) / float64(required)
	}
	return a
}

// Controllers returns the dependency controllers in sorted order.
func (a Analysis) Controllers() []string {
	out := make([]string, 0, len(a.Dependencies))
	for k := range a.Dependencies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
