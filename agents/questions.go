package agents

import (
	"context"
	"strings"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/inference"
	"github.com/smallnest/formgraph/log"
)

// QuestionGenerator produces one clarifying question per flagged field.
type QuestionGenerator struct {
	questioner inference.Questioner
	rules      *form.RuleTable
	onFailure  func(error)
}

// NewQuestionGenerator creates a question stage. questioner may be nil, in
// which case the deterministic template is always used.
func NewQuestionGenerator(questioner inference.Questioner, rules *form.RuleTable, onFailure func(error)) *QuestionGenerator {
	return &QuestionGenerator{questioner: questioner, rules: rules, onFailure: onFailure}
}

// Generate returns questions in field order for fields that are missing or
// violate a rule. A field flagged both ways gets a single question.
func (q *QuestionGenerator) Generate(ctx context.Context, fields []form.FormField, missing []string, violations []form.ValidationError) []string {
	reasons := make(map[string]form.ValidationError)
	for _, v := range violations {
		if _, ok := reasons[v.FieldID]; !ok {
			reasons[v.FieldID] = v
		}
	}
	idx := form.Index(fields)
	for _, id := range missing {
		if i, ok := idx[id]; ok {
			reasons[id] = form.MissingReason(fields[i])
		}
	}

	questions := make([]string, 0, len(reasons))
	for _, f := range fields {
		reason, ok := reasons[f.DataID]
		if !ok {
			continue
		}
		questions = append(questions, q.ask(ctx, f, reason))
	}
	return questions
}

func (q *QuestionGenerator) ask(ctx context.Context, f form.FormField, reason form.ValidationError) string {
	if q.questioner != nil {
		text, err := q.questioner.GenerateQuestion(ctx, f, reason)
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			log.Warn("question generation failed for %s, using template: %v", f.DataID, err)
			if q.onFailure != nil {
				q.onFailure(err)
			}
		}
	}
	return form.DefaultQuestion(f, reason, q.rules)
}

// Suggestions returns the rule-table suggestions for the current values.
func (q *QuestionGenerator) Suggestions(fields []form.FormField) []string {
	out := q.rules.SuggestionsFor(fields)
	if out == nil {
		return []string{}
	}
	return out
}
