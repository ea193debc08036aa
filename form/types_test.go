package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormField_UnmarshalAliases(t *testing.T) {
	data := `{
		"dataId": "Name",
		"fieldLabel": "*Full name",
		"fieldType": "text",
		"fieldValue": "Ada",
		"isRequired": true,
		"validationRules": {"min_length": 2}
	}`

	var f FormField
	require.NoError(t, json.Unmarshal([]byte(data), &f))
	assert.Equal(t, "Name", f.DataID)
	assert.Equal(t, "*Full name", f.Label)
	assert.Equal(t, FieldText, f.Type)
	assert.Equal(t, "Ada", f.Value)
	assert.True(t, f.Required)
	require.NotNil(t, f.Rules)
	require.NotNil(t, f.Rules.MinLength)
	assert.Equal(t, 2, *f.Rules.MinLength)
}

func TestFormField_SnakeCaseWins(t *testing.T) {
	var f FormField
	require.NoError(t, json.Unmarshal([]byte(`{"data_id":"a","dataId":"b","field_type":"email"}`), &f))
	assert.Equal(t, "a", f.DataID)
	assert.Equal(t, FieldEmail, f.Type)
}

func TestFormField_Helpers(t *testing.T) {
	f := FormField{DataID: "Cat", Label: " *Fee Exemption Category:", Type: FieldSelectOne,
		Options: []string{"Federal Government", "Non-Profit"}}

	assert.True(t, f.IsRequired())
	assert.True(t, f.IsEmpty())
	assert.Equal(t, "Fee Exemption Category:", f.DisplayLabel())

	opt, ok := f.MatchOption("  federal government ")
	assert.True(t, ok)
	assert.Equal(t, "Federal Government", opt)

	_, ok = f.MatchOption("State Government")
	assert.False(t, ok)

	assert.Equal(t, "X", FormField{DataID: "X", Label: "*"}.DisplayLabel())
	assert.True(t, FieldCheckbox.IsChoice())
	assert.False(t, FieldDate.IsChoice())
	assert.False(t, FieldType("color").Valid())
}

func TestClone_IsDeep(t *testing.T) {
	fields := ExampleFields()
	cp := Clone(fields)
	cp[0].Options[0] = "changed"
	*cp[2].Rules.MinLength = 1
	cp[3].Value = "Non-Profit"

	assert.Equal(t, "Yes", fields[0].Options[0])
	assert.Equal(t, 5, *fields[2].Rules.MinLength)
	assert.Equal(t, "Federal Government", fields[3].Value)
	assert.Nil(t, Clone(nil))
}

func TestIndex(t *testing.T) {
	idx := Index(ExampleFields())
	assert.Equal(t, 0, idx["V1IsEligibleForFeeExemption"])
	assert.Equal(t, 4, idx["V1FeeExemptionSupportingInfo"])
	assert.Len(t, idx, 5)
}
