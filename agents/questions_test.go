package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/inference"
)

func TestQuestionGenerator_OnePerFlaggedField(t *testing.T) {
	fields := form.ExampleFields()
	fields[3].Value = "State Government"
	rules := form.DefaultRules()
	res := form.Validate(fields, rules)

	got := NewQuestionGenerator(nil, rules, nil).Generate(context.Background(), fields, res.Missing, res.Violations)
	assert.Len(t, got, 2)
	assert.Equal(t, "What is your client number for the fee exemption program?", got[0])
	assert.Contains(t, got[1], "Fee Exemption Category:")
}

func TestQuestionGenerator_MissingAndViolatingOnce(t *testing.T) {
	fields := []form.FormField{{DataID: "Pick", Label: "*Pick one", Type: form.FieldRadio}}
	res := form.Validate(fields, nil)
	assert.Len(t, res.Missing, 1)
	assert.Len(t, res.Violations, 1)

	got := NewQuestionGenerator(nil, nil, nil).Generate(context.Background(), fields, res.Missing, res.Violations)
	assert.Equal(t, []string{"Could you please provide: Pick one"}, got)
}

func TestQuestionGenerator_FallsBackToTemplate(t *testing.T) {
	fields := form.ExampleFields()
	failures := 0
	failing := inference.QuestionerFunc(func(context.Context, form.FormField, form.ValidationError) (string, error) {
		return "", errors.New("model down")
	})

	g := NewQuestionGenerator(failing, form.DefaultRules(), func(error) { failures++ })
	got := g.Generate(context.Background(), fields, []string{"V1FeeExemptionClientNumber"}, nil)
	assert.Equal(t, []string{"What is your client number for the fee exemption program?"}, got)
	assert.Equal(t, 1, failures)

	custom := inference.QuestionerFunc(func(_ context.Context, f form.FormField, _ form.ValidationError) (string, error) {
		return "  Tell me your " + f.DisplayLabel() + " ", nil
	})
	got = NewQuestionGenerator(custom, nil, nil).Generate(context.Background(), fields, []string{"V1FeeExemptionClientNumber"}, nil)
	assert.Equal(t, []string{"Tell me your Please enter your client number:"}, got)
}

func TestQuestionGenerator_Suggestions(t *testing.T) {
	g := NewQuestionGenerator(nil, form.DefaultRules(), nil)
	assert.Len(t, g.Suggestions(form.ExampleFields()), 2)
	assert.Equal(t, []string{}, NewQuestionGenerator(nil, nil, nil).Suggestions(form.ExampleFields()))
}
