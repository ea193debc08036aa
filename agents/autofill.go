package agents

import (
	"fmt"
	"strings"

	"github.com/smallnest/formgraph/form"
)

// FillResult is the outcome of auto-fill.
type FillResult struct {
	Fields []form.FormField
	// Filled holds only the values assigned by auto-fill.
	Filled  map[string]string
	Sources map[string]Tier
}

// AutoFiller applies extraction candidates, user context and rule defaults to
// empty fields. A non-empty incoming value is never overwritten.
type AutoFiller struct {
	rules *form.RuleTable
}

// NewAutoFiller creates an auto-fill stage.
func NewAutoFiller(rules *form.RuleTable) *AutoFiller {
	return &AutoFiller{rules: rules}
}

// Fill returns a filled copy of fields. Fields are processed in order and
// relevance is evaluated against the values filled so far, so a controller
// filled earlier can switch off its dependents.
func (a *AutoFiller) Fill(fields []form.FormField, candidates map[string]Candidate, userContext map[string]any) FillResult {
	res := FillResult{
		Fields:  form.Clone(fields),
		Filled:  make(map[string]string),
		Sources: make(map[string]Tier),
	}

	for i := range res.Fields {
		f := &res.Fields[i]
		if !f.IsEmpty() {
			res.Sources[f.DataID] = TierProvided
			continue
		}
		if a.rules.Inactive(res.Fields)[f.DataID] {
			continue
		}

		value, tier, ok := a.pick(*f, candidates, userContext)
		if !ok {
			continue
		}
		f.Value = value
		res.Filled[f.DataID] = value
		res.Sources[f.DataID] = tier
	}
	return res
}

func (a *AutoFiller) pick(f form.FormField, candidates map[string]Candidate, userContext map[string]any) (string, Tier, bool) {
	if c, ok := candidates[f.DataID]; ok {
		if v, ok := canonical(f, c.Value); ok {
			return v, c.Tier, true
		}
	}
	for _, key := range a.rules.ContextKeys(f.DataID) {
		raw, ok := userContext[key]
		if !ok {
			continue
		}
		if v, ok := canonical(f, contextString(raw)); ok {
			return v, TierContext, true
		}
	}
	if def, ok := a.rules.Default(f.DataID); ok {
		if v, ok := canonical(f, def); ok {
			return v, TierDefault, true
		}
	}
	return "", "", false
}

// canonical maps value onto the field's options for choice fields. Values
// that match no option are rejected.
func canonical(f form.FormField, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if !f.Type.IsChoice() || len(f.Options) == 0 {
		return value, true
	}
	if f.Type != form.FieldCheckbox {
		return f.MatchOption(value)
	}

	var picked []string
	for _, item := range strings.Split(value, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		opt, ok := f.MatchOption(item)
		if !ok {
			return "", false
		}
		picked = append(picked, opt)
	}
	if len(picked) == 0 {
		return "", false
	}
	return strings.Join(picked, ","), true
}

func contextString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(x)
	}
}
