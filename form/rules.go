package form

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// FieldRule declares dependency, fallback and wording rules for one field.
// A field may have several rules, one per controller.
type FieldRule struct {
	Field     string `yaml:"field" validate:"required"`
	DependsOn string `yaml:"depends_on,omitempty"`
	// When lists the controller values under which Field is relevant.
	// Empty means the dependency is informational only.
	When       []string `yaml:"when,omitempty"`
	Default    string   `yaml:"default,omitempty"`
	ContextKey string   `yaml:"context_key,omitempty"`
	Question   string   `yaml:"question,omitempty"`
}

// Condition holds when Field's value equals Equals, ignoring case.
type Condition struct {
	Field  string `yaml:"field" validate:"required"`
	Equals string `yaml:"equals"`
}

// SuggestionRule emits Text when When holds, Unless does not and Missing is empty.
type SuggestionRule struct {
	When    Condition  `yaml:"when"`
	Unless  *Condition `yaml:"unless,omitempty"`
	Missing string     `yaml:"missing,omitempty"`
	Text    string     `yaml:"text" validate:"required"`
}

// RuleTable is the declarative rule set consulted by the analyzer, the
// validator, auto-fill and question generation.
type RuleTable struct {
	Fields      []FieldRule      `yaml:"fields" validate:"dive"`
	Suggestions []SuggestionRule `yaml:"suggestions" validate:"dive"`
	// HalfFormHint is suggested when fewer than half of the fields have a value.
	HalfFormHint string `yaml:"half_form_hint,omitempty"`
}

// DefaultRules returns the embedded rule table for the fee-exemption form.
func DefaultRules() *RuleTable {
	t, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("form: embedded rules: %v", err))
	}
	return t
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) (*RuleTable, error) {
	var t RuleTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := validate.Struct(&t); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return &t, nil
}

// LoadRules reads a rule table from path, or returns DefaultRules when path is empty.
func LoadRules(path string) (*RuleTable, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// RulesFor returns the rules declared for field.
func (t *RuleTable) RulesFor(field string) []FieldRule {
	if t == nil {
		return nil
	}
	var out []FieldRule
	for _, r := range t.Fields {
		if r.Field == field {
			out = append(out, r)
		}
	}
	return out
}

// Dependencies maps each controller to the fields that depend on it, in rule order.
func (t *RuleTable) Dependencies() map[string][]string {
	deps := make(map[string][]string)
	if t == nil {
		return deps
	}
	for _, r := range t.Fields {
		if r.DependsOn == "" {
			continue
		}
		if !slices.Contains(deps[r.DependsOn], r.Field) {
			deps[r.DependsOn] = append(deps[r.DependsOn], r.Field)
		}
	}
	return deps
}

// Inactive returns the ids of fields made irrelevant by the current values:
// a gating controller holds a non-empty value outside the rule's When list.
func (t *RuleTable) Inactive(fields []FormField) map[string]bool {
	inactive := make(map[string]bool)
	if t == nil {
		return inactive
	}
	values := valuesByID(fields)
	for _, r := range t.Fields {
		if r.DependsOn == "" || len(r.When) == 0 {
			continue
		}
		v, ok := values[r.DependsOn]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if !containsFold(r.When, v) {
			inactive[r.Field] = true
		}
	}
	return inactive
}

// Default returns the first declared default for field.
func (t *RuleTable) Default(field string) (string, bool) {
	for _, r := range t.RulesFor(field) {
		if r.Default != "" {
			return r.Default, true
		}
	}
	return "", false
}

// ContextKeys returns the user-context keys consulted for field: the data id
// first, then any declared context_key.
func (t *RuleTable) ContextKeys(field string) []string {
	keys := []string{field}
	for _, r := range t.RulesFor(field) {
		if r.ContextKey != "" && !slices.Contains(keys, r.ContextKey) {
			keys = append(keys, r.ContextKey)
		}
	}
	return keys
}

// QuestionFor returns the declared question wording for field, if any.
func (t *RuleTable) QuestionFor(field string) (string, bool) {
	for _, r := range t.RulesFor(field) {
		if r.Question != "" {
			return r.Question, true
		}
	}
	return "", false
}

// SuggestionsFor evaluates the suggestion rules against fields.
func (t *RuleTable) SuggestionsFor(fields []FormField) []string {
	var out []string
	if t == nil {
		return out
	}
	values := valuesByID(fields)
	holds := func(c *Condition) bool {
		v, ok := values[c.Field]
		return ok && strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(c.Equals))
	}

	for _, s := range t.Suggestions {
		if !holds(&s.When) {
			continue
		}
		if s.Unless != nil && holds(s.Unless) {
			continue
		}
		if s.Missing != "" {
			v, ok := values[s.Missing]
			if !ok || strings.TrimSpace(v) != "" {
				continue
			}
		}
		if !slices.Contains(out, s.Text) {
			out = append(out, s.Text)
		}
	}

	if t.HalfFormHint != "" && len(fields) > 0 {
		filled := 0
		for _, f := range fields {
			if !f.IsEmpty() {
				filled++
			}
		}
		if float64(filled) < float64(len(fields))*0.5 {
			out = append(out, t.HalfFormHint)
		}
	}
	return out
}

func valuesByID(fields []FormField) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.DataID] = f.Value
	}
	return values
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}
