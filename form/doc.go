// Package form holds the form data model and the deterministic parts of form
// processing: request decoding, the declarative rule table, structural
// analysis and field validation.
//
// Analyze and Validate are pure functions of the field list and the rule
// table; calling them twice on the same input yields the same result.
//
//	req, err := form.DecodeRequest(r.Body)
//	if err != nil {
//		// errors.Is(err, form.ErrInvalidRequest)
//	}
//	rules := form.DefaultRules()
//	analysis := form.Analyze(req.FormFields, rules)
//	result := form.Validate(req.FormFields, rules)
package form
