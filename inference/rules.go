package inference

import (
	"context"
	"regexp"
	"strings"

	"github.com/smallnest/formgraph/form"
)

var (
	governmentPattern   = regexp.MustCompile(`(?i)\b(federal|provincial|municipal|state|local)\s*government`)
	organizationPattern = regexp.MustCompile(`(?i)\b(non-?\s?profit|charity|first\s*nations?|indigenous)`)
	clientNumberPattern = regexp.MustCompile(`(?i)client\s*(?:number|id|#|no\.?)?\s*(?:is|:|=)?\s*([a-z0-9][a-z0-9\-]*\d[a-z0-9\-]*)`)
	exemptionPattern    = regexp.MustCompile(`(?i)\bexempt(?:ion)?\b`)
	existingPattern     = regexp.MustCompile(`(?i)\bexisting\b`)
	emailPattern        = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	datePattern         = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

type matcher struct {
	applies func(f form.FormField) bool
	extract func(text string, f form.FormField) (string, bool)
}

// Rules is a deterministic Inferer and Questioner built from regular
// expressions and option matching. It needs no network and is used as the
// fallback when no model is configured or the model fails.
type Rules struct {
	table    *form.RuleTable
	matchers []matcher
}

var (
	_ Inferer    = (*Rules)(nil)
	_ Questioner = (*Rules)(nil)
)

// NewRules creates a rule-based inferer. table supplies question wording and
// may be nil.
func NewRules(table *form.RuleTable) *Rules {
	return &Rules{
		table: table,
		matchers: []matcher{
			{applies: idOrLabel("FeeExemptionCategory", "exemption category"), extract: extractCategory},
			{applies: idOrLabel("ClientNumber", "client number"), extract: extractClientNumber},
			{applies: idOrLabel("IsEligibleForFeeExemption", "eligible for fee exemption"), extract: extractEligible},
			{applies: idOrLabel("IsExistingExemptClient", "existing exempt client"), extract: extractExisting},
			{applies: ofType(form.FieldEmail), extract: extractPattern(emailPattern)},
			{applies: ofType(form.FieldDate), extract: extractPattern(datePattern)},
			{applies: isChoice, extract: extractOption},
		},
	}
}

// Infer implements Inferer. The first matcher that applies to a field and
// yields a value wins.
func (r *Rules) Infer(ctx context.Context, text string, fields []form.FormField) (map[string]string, error) {
	out := make(map[string]string)
	for _, f := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, m := range r.matchers {
			if !m.applies(f) {
				continue
			}
			if v, ok := m.extract(text, f); ok {
				out[f.DataID] = v
				break
			}
		}
	}
	return out, nil
}

// GenerateQuestion implements Questioner with the deterministic template.
func (r *Rules) GenerateQuestion(_ context.Context, field form.FormField, reason form.ValidationError) (string, error) {
	return form.DefaultQuestion(field, reason, r.table), nil
}

func idOrLabel(idPart, labelPart string) func(form.FormField) bool {
	return func(f form.FormField) bool {
		return strings.Contains(f.DataID, idPart) ||
			strings.Contains(strings.ToLower(f.Label), labelPart)
	}
}

func ofType(t form.FieldType) func(form.FormField) bool {
	return func(f form.FormField) bool { return f.Type == t }
}

func isChoice(f form.FormField) bool { return f.Type.IsChoice() }

func extractCategory(text string, f form.FormField) (string, bool) {
	if m := governmentPattern.FindStringSubmatch(text); m != nil {
		level := strings.ToLower(m[1])
		return strings.ToUpper(level[:1]) + level[1:] + " Government", true
	}
	if m := organizationPattern.FindStringSubmatch(text); m != nil {
		kind := strings.ToLower(m[1])
		switch {
		case strings.HasPrefix(kind, "non"), kind == "charity":
			return "Non-Profit", true
		default:
			return "First Nations", true
		}
	}
	return extractOption(text, f)
}

func extractClientNumber(text string, _ form.FormField) (string, bool) {
	m := clientNumberPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func extractEligible(text string, _ form.FormField) (string, bool) {
	if exemptionPattern.MatchString(text) {
		return "Yes", true
	}
	return "", false
}

func extractExisting(text string, _ form.FormField) (string, bool) {
	if existingPattern.MatchString(text) && exemptionPattern.MatchString(text) {
		return "Yes", true
	}
	return "", false
}

func extractPattern(re *regexp.Regexp) func(string, form.FormField) (string, bool) {
	return func(text string, _ form.FormField) (string, bool) {
		v := re.FindString(text)
		return v, v != ""
	}
}

// extractOption returns the longest option mentioned in text. Yes/No style
// options are too ambiguous to match by mention and are skipped.
func extractOption(text string, f form.FormField) (string, bool) {
	lower := strings.ToLower(text)
	best := ""
	for _, opt := range f.Options {
		o := strings.ToLower(strings.TrimSpace(opt))
		if o == "" || o == "yes" || o == "no" {
			continue
		}
		if containsWord(lower, o) && len(opt) > len(best) {
			best = opt
		}
	}
	return best, best != ""
}

func containsWord(text, word string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
