package form

import "fmt"

// MissingReason is the reason passed for a required field without a value.
func MissingReason(f FormField) ValidationError {
	return ValidationError{FieldID: f.DataID, Message: "This field is required", Type: ErrTypeRequired}
}

// DefaultQuestion is the deterministic wording used when no question
// generator is available or it fails. Rule-table wording wins for missing
// fields.
func DefaultQuestion(f FormField, reason ValidationError, rules *RuleTable) string {
	label := f.DisplayLabel()
	if reason.Type == ErrTypeRequired || reason.Type == "" {
		if q, ok := rules.QuestionFor(f.DataID); ok {
			return q
		}
		return "Could you please provide: " + label
	}
	if f.Type.IsChoice() && len(f.Options) > 0 {
		return fmt.Sprintf("The value for %q is not valid (%s). Which of these applies?", label, reason.Message)
	}
	return fmt.Sprintf("The value for %q is not valid (%s). Could you please provide a corrected value?", label, reason.Message)
}
