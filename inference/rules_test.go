package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/formgraph/form"
)

func categoryField() form.FormField {
	return form.FormField{
		DataID:   "V1FeeExemptionCategory",
		Label:    "*Fee Exemption Category:",
		Type:     form.FieldSelectOne,
		Required: true,
		Options:  []string{"Federal Government", "Provincial Government", "Municipal Government"},
	}
}

func TestRules_FederalGovernment(t *testing.T) {
	r := NewRules(nil)
	out, err := r.Infer(context.Background(), "I work for the federal government", []form.FormField{categoryField()})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"V1FeeExemptionCategory": "Federal Government"}, out)
}

func TestRules_ExampleForm(t *testing.T) {
	r := NewRules(form.DefaultRules())
	msg := "We are an existing exempt non-profit, client number CL-12345"

	out, err := r.Infer(context.Background(), msg, form.ExampleFields())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"V1IsEligibleForFeeExemption": "Yes",
		"V1IsExistingExemptClient":    "Yes",
		"V1FeeExemptionClientNumber":  "CL-12345",
		"V1FeeExemptionCategory":      "Non-Profit",
	}, out)
}

func TestRules_ClientNumberVariants(t *testing.T) {
	field := form.FormField{DataID: "V1FeeExemptionClientNumber", Type: form.FieldText}
	r := NewRules(nil)

	tests := map[string]string{
		"my client number is AB-77812":  "AB-77812",
		"Client ID: 90210":              "90210",
		"client #A1B2C3 please":         "A1B2C3",
		"I am an existing client":       "",
		"please contact the client now": "",
	}
	for msg, want := range tests {
		out, err := r.Infer(context.Background(), msg, []form.FormField{field})
		require.NoError(t, err)
		assert.Equal(t, want, out[field.DataID], msg)
	}
}

func TestRules_GenericFields(t *testing.T) {
	fields := []form.FormField{
		{DataID: "Contact", Type: form.FieldEmail},
		{DataID: "Start", Type: form.FieldDate},
		{DataID: "Colour", Type: form.FieldRadio, Options: []string{"Red", "Dark Red", "Blue"}},
		{DataID: "Agree", Type: form.FieldRadio, Options: []string{"Yes", "No"}},
	}
	msg := "Reach me at ada@example.com, start on 2024-05-01, I like dark red. Yes."

	out, err := NewRules(nil).Infer(context.Background(), msg, fields)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Contact": "ada@example.com",
		"Start":   "2024-05-01",
		"Colour":  "Dark Red",
	}, out)
}

func TestRules_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRules(nil).Infer(ctx, "federal government", []form.FormField{categoryField()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRules_GenerateQuestion(t *testing.T) {
	r := NewRules(form.DefaultRules())
	f := categoryField()
	q, err := r.GenerateQuestion(context.Background(), f, form.MissingReason(f))
	require.NoError(t, err)
	assert.Equal(t, "Could you please provide: Fee Exemption Category:", q)
}
