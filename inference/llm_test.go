package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/formgraph/form"
)

func TestLLM_Infer(t *testing.T) {
	model := &mockModel{responses: []string{
		"Sure! Here is the data:\n```json\n{\"V1FeeExemptionCategory\": \"Federal Government\", \"unknown\": \"x\", \"V1FeeExemptionClientNumber\": null}\n```",
	}}
	fields := form.ExampleFields()

	out, err := NewLLM(model).Infer(context.Background(), "I work for the federal government", fields)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"V1FeeExemptionCategory": "Federal Government"}, out)

	require.Equal(t, 1, model.callCount())
	prompt := humanText(model.calls[0])
	assert.Contains(t, prompt, "I work for the federal government")
	assert.Contains(t, prompt, `"data_id":"V1FeeExemptionCategory"`)
	assert.Contains(t, prompt, `"label":"Fee Exemption Category:"`)
}

func TestLLM_InferErrors(t *testing.T) {
	fields := form.ExampleFields()

	_, err := NewLLM(&mockModel{responses: []string{"I cannot help with that."}}).
		Infer(context.Background(), "hi", fields)
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = NewLLM(&mockModel{responses: []string{"{not json}"}}).
		Infer(context.Background(), "hi", fields)
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = NewLLM(&mockModel{}).Infer(context.Background(), "hi", fields)
	assert.ErrorIs(t, err, ErrEmptyOutput)

	boom := errors.New("connection refused")
	_, err = NewLLM(&mockModel{err: boom}).Infer(context.Background(), "hi", fields)
	assert.ErrorIs(t, err, boom)
}

func TestParseExtraction_Values(t *testing.T) {
	fields := []form.FormField{
		{DataID: "Count", Type: form.FieldNumber},
		{DataID: "Agree", Type: form.FieldRadio},
		{DataID: "Tags", Type: form.FieldCheckbox},
		{DataID: "Name", Type: form.FieldText},
	}
	out, err := ParseExtraction(`{"Count": 3, "Agree": true, "Tags": ["a", "b"], "Name": "  "}`, fields)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Count": "3", "Agree": "Yes", "Tags": "a,b"}, out)
}

func TestLLM_GenerateQuestion(t *testing.T) {
	model := &mockModel{responses: []string{`  "What is your client number?"  `}}
	fields := form.ExampleFields()
	fields[2].Value = "ABC"
	reason, ok := form.ValidateField(fields[2])
	require.False(t, ok)

	q, err := NewLLM(model).GenerateQuestion(context.Background(), fields[2], reason)
	require.NoError(t, err)
	assert.Equal(t, "What is your client number?", q)
	prompt := humanText(model.calls[0])
	assert.Contains(t, prompt, "Please enter your client number:")
	assert.Contains(t, prompt, "Must be at least 5 characters")

	_, err = NewLLM(&mockModel{responses: []string{"  "}}).
		GenerateQuestion(context.Background(), fields[2], form.MissingReason(fields[2]))
	assert.ErrorIs(t, err, ErrEmptyOutput)
}
