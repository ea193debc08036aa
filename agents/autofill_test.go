package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/formgraph/form"
)

func TestAutoFiller_NeverOverwrites(t *testing.T) {
	fields := form.ExampleFields()
	candidates := map[string]Candidate{
		"V1FeeExemptionCategory":     {Value: "Municipal Government", Tier: TierExact},
		"V1IsExistingExemptClient":   {Value: "No", Tier: TierInferred},
		"V1FeeExemptionClientNumber": {Value: "CL-12345", Tier: TierExact},
	}

	res := NewAutoFiller(form.DefaultRules()).Fill(fields, candidates, nil)
	for i, f := range fields {
		if !f.IsEmpty() {
			assert.Equal(t, f.Value, res.Fields[i].Value, f.DataID)
			assert.Equal(t, TierProvided, res.Sources[f.DataID])
		}
	}
	assert.Equal(t, map[string]string{"V1FeeExemptionClientNumber": "CL-12345"}, res.Filled)
	assert.Equal(t, TierExact, res.Sources["V1FeeExemptionClientNumber"])
	assert.Equal(t, "Federal Government", fields[3].Value)
	assert.Empty(t, fields[2].Value)
}

func TestAutoFiller_CanonicalizesOptions(t *testing.T) {
	fields := []form.FormField{
		{DataID: "V1FeeExemptionCategory", Type: form.FieldSelectOne,
			Options: []string{"Federal Government", "Provincial Government", "Municipal Government"}},
		{DataID: "Tags", Type: form.FieldCheckbox, Options: []string{"Alpha", "Beta"}},
		{DataID: "Mood", Type: form.FieldRadio, Options: []string{"Happy", "Sad"}},
	}
	candidates := map[string]Candidate{
		"V1FeeExemptionCategory": {Value: "federal government", Tier: TierExact},
		"Tags":                   {Value: "beta, alpha", Tier: TierInferred},
		"Mood":                   {Value: "Angry", Tier: TierInferred},
	}

	res := NewAutoFiller(nil).Fill(fields, candidates, nil)
	assert.Equal(t, map[string]string{
		"V1FeeExemptionCategory": "Federal Government",
		"Tags":                   "Beta,Alpha",
	}, res.Filled)
	assert.Empty(t, res.Fields[2].Value)
}

func TestAutoFiller_SkipsInactive(t *testing.T) {
	fields := form.ExampleFields()
	fields[0].Value = ""
	fields[2].Value = ""
	candidates := map[string]Candidate{
		"V1IsEligibleForFeeExemption": {Value: "no", Tier: TierInferred},
		"V1FeeExemptionClientNumber":  {Value: "CL-12345", Tier: TierExact},
	}

	res := NewAutoFiller(form.DefaultRules()).Fill(fields, candidates, nil)
	assert.Equal(t, "No", res.Fields[0].Value)
	assert.Empty(t, res.Fields[2].Value)
	assert.NotContains(t, res.Filled, "V1FeeExemptionClientNumber")
}

func TestAutoFiller_ContextAndDefault(t *testing.T) {
	rules, err := form.ParseRules([]byte(`
fields:
  - field: Province
    default: Ontario
  - field: Client
    context_key: client_number
`))
	require.NoError(t, err)

	fields := []form.FormField{
		{DataID: "Client", Type: form.FieldText},
		{DataID: "Province", Type: form.FieldText},
		{DataID: "Urgent", Type: form.FieldRadio, Options: []string{"Yes", "No"}},
	}
	userContext := map[string]any{"client_number": "CL-99999", "Urgent": true}

	res := NewAutoFiller(rules).Fill(fields, nil, userContext)
	assert.Equal(t, map[string]string{
		"Client":   "CL-99999",
		"Province": "Ontario",
		"Urgent":   "Yes",
	}, res.Filled)
	assert.Equal(t, map[string]Tier{
		"Client":   TierContext,
		"Province": TierDefault,
		"Urgent":   TierContext,
	}, res.Sources)
}
