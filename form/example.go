package form

// ExampleMessage is the message of the example request.
const ExampleMessage = "Can you please help me fill this water licence application form, please verify if all fields are correct or you need more information"

func intPtr(v int) *int { return &v }

// ExampleFields returns a fresh copy of the fee-exemption example form.
func ExampleFields() []FormField {
	return []FormField{
		{
			DataID:   "V1IsEligibleForFeeExemption",
			Label:    "Are you eligible for fee exemption?",
			Type:     FieldRadio,
			Value:    "Yes",
			Required: true,
			Options:  []string{"Yes", "No"},
		},
		{
			DataID:   "V1IsExistingExemptClient",
			Label:    "Are you an existing exempt client?",
			Type:     FieldRadio,
			Value:    "Yes",
			Required: true,
			Options:  []string{"Yes", "No"},
		},
		{
			DataID:   "V1FeeExemptionClientNumber",
			Label:    "*Please enter your client number:",
			Type:     FieldText,
			Required: true,
			Rules:    &ValidationRules{MinLength: intPtr(5), MaxLength: intPtr(20)},
		},
		{
			DataID:   "V1FeeExemptionCategory",
			Label:    "*Fee Exemption Category:",
			Type:     FieldSelectOne,
			Value:    "Federal Government",
			Required: true,
			Options:  []string{"Federal Government", "Provincial Government", "Municipal Government", "First Nations", "Non-Profit"},
		},
		{
			DataID: "V1FeeExemptionSupportingInfo",
			Label:  "Please enter any supporting information that will assist in determining your eligibility for a fee exemption.",
			Type:   FieldTextarea,
			Rules:  &ValidationRules{MaxLength: intPtr(1000)},
		},
	}
}

// UsageInstructions tells a client how to use the example payload.
type UsageInstructions struct {
	Endpoint         string   `json:"endpoint"`
	Method           string   `json:"method"`
	Description      string   `json:"description"`
	ExpectedBehavior []string `json:"expected_behavior"`
}

// Example is the payload served by the example-form endpoint.
type Example struct {
	Request
	UsageInstructions UsageInstructions `json:"usage_instructions"`
}

// ExampleRequest returns the example request with usage instructions.
func ExampleRequest(endpoint string) Example {
	return Example{
		Request: Request{
			Message:    ExampleMessage,
			FormFields: ExampleFields(),
			UserContext: map[string]any{
				"organization_type":     "government",
				"previous_applications": false,
				"urgency_level":         "normal",
			},
		},
		UsageInstructions: UsageInstructions{
			Endpoint:    endpoint,
			Method:      "POST",
			Description: "Send this example payload to test the agentic form filling system",
			ExpectedBehavior: []string{
				"The system will analyze the form structure",
				"Extract relevant information from the message",
				"Auto-fill appropriate fields",
				"Validate the form data",
				"Generate questions for missing information",
				"Provide suggestions for form completion",
			},
		},
	}
}
