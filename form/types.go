package form

import (
	"encoding/json"
	"slices"
	"strings"
)

// FieldType is the declared type of a form field.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldTextarea  FieldType = "textarea"
	FieldRadio     FieldType = "radio"
	FieldSelectOne FieldType = "select-one"
	FieldCheckbox  FieldType = "checkbox"
	FieldEmail     FieldType = "email"
	FieldNumber    FieldType = "number"
	FieldDate      FieldType = "date"
)

// FieldTypes lists every supported field type.
var FieldTypes = []FieldType{
	FieldText, FieldTextarea, FieldRadio, FieldSelectOne,
	FieldCheckbox, FieldEmail, FieldNumber, FieldDate,
}

// Valid reports whether t is one of FieldTypes.
func (t FieldType) Valid() bool {
	return slices.Contains(FieldTypes, t)
}

// IsChoice reports whether the field takes its value from Options.
func (t FieldType) IsChoice() bool {
	return t == FieldRadio || t == FieldSelectOne || t == FieldCheckbox
}

// ValidationRules are the per-field constraints checked by Validate.
// Pointers distinguish "not set" from zero.
type ValidationRules struct {
	MinLength *int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

func (r *ValidationRules) clone() *ValidationRules {
	out := *r
	if r.MinLength != nil {
		v := *r.MinLength
		out.MinLength = &v
	}
	if r.MaxLength != nil {
		v := *r.MaxLength
		out.MaxLength = &v
	}
	if r.Min != nil {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		out.Max = &v
	}
	return &out
}

// FormField is one input element of the form being completed.
type FormField struct {
	DataID   string           `json:"data_id" validate:"required"`
	Label    string           `json:"field_label"`
	Type     FieldType        `json:"field_type" validate:"required,oneof=text textarea radio select-one checkbox email number date"`
	Value    string           `json:"field_value"`
	Required bool             `json:"is_required"`
	Rules    *ValidationRules `json:"validation_rules,omitempty"`
	Options  []string         `json:"options,omitempty"`
}

// UnmarshalJSON accepts the camelCase aliases used by some clients.
func (f *FormField) UnmarshalJSON(data []byte) error {
	type plain FormField
	var aux struct {
		plain
		DataIDAlias *string          `json:"dataId"`
		LabelAlias  *string          `json:"fieldLabel"`
		TypeAlias   *FieldType       `json:"fieldType"`
		ValueAlias  *string          `json:"fieldValue"`
		ReqAlias    *bool            `json:"isRequired"`
		RulesAlias  *ValidationRules `json:"validationRules"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = FormField(aux.plain)
	if aux.DataIDAlias != nil && f.DataID == "" {
		f.DataID = *aux.DataIDAlias
	}
	if aux.LabelAlias != nil && f.Label == "" {
		f.Label = *aux.LabelAlias
	}
	if aux.TypeAlias != nil && f.Type == "" {
		f.Type = *aux.TypeAlias
	}
	if aux.ValueAlias != nil && f.Value == "" {
		f.Value = *aux.ValueAlias
	}
	if aux.ReqAlias != nil && !f.Required {
		f.Required = *aux.ReqAlias
	}
	if aux.RulesAlias != nil && f.Rules == nil {
		f.Rules = aux.RulesAlias
	}
	return nil
}

// IsRequired reports whether the field is required, either explicitly or
// because its label starts with "*".
func (f FormField) IsRequired() bool {
	return f.Required || strings.HasPrefix(strings.TrimSpace(f.Label), "*")
}

// IsEmpty reports whether the field has no value.
func (f FormField) IsEmpty() bool {
	return strings.TrimSpace(f.Value) == ""
}

// DisplayLabel is the label without the required marker, or the data id when
// the label is empty.
func (f FormField) DisplayLabel() string {
	label := strings.TrimSpace(strings.ReplaceAll(f.Label, "*", ""))
	if label == "" {
		return f.DataID
	}
	return label
}

// MatchOption returns the option equal to value ignoring case and surrounding
// space.
func (f FormField) MatchOption(value string) (string, bool) {
	v := strings.TrimSpace(value)
	for _, opt := range f.Options {
		if strings.EqualFold(strings.TrimSpace(opt), v) {
			return opt, true
		}
	}
	return "", false
}

// Clone returns a deep copy of fields.
func Clone(fields []FormField) []FormField {
	if fields == nil {
		return nil
	}
	out := make([]FormField, len(fields))
	for i, f := range fields {
		f.Options = slices.Clone(f.Options)
		if f.Rules != nil {
			f.Rules = f.Rules.clone()
		}
		out[i] = f
	}
	return out
}

// Index maps data ids to positions in fields.
func Index(fields []FormField) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.DataID] = i
	}
	return idx
}

// ValidationError is one format violation found by Validate.
type ValidationError struct {
	FieldID string `json:"field_id"`
	Message string `json:"error_message"`
	Type    string `json:"error_type"`
}

// Violation types reported by Validate.
const (
	ErrTypeRequired      = "required"
	ErrTypeMinLength     = "min_length"
	ErrTypeMaxLength     = "max_length"
	ErrTypePattern       = "pattern"
	ErrTypeInvalidEmail  = "invalid_email"
	ErrTypeInvalidNumber = "invalid_number"
	ErrTypeOutOfRange    = "out_of_range"
	ErrTypeInvalidDate   = "invalid_date"
	ErrTypeInvalidOption = "invalid_option"
	ErrTypeNoOptions     = "no_options"
	ErrTypeInvalidRule   = "invalid_rule"
	ErrTypeUnsupported   = "unsupported_type"
)
