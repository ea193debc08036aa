package orchestrator

import (
	"regexp"
	"strings"
)

// Fee exemption fields the permissions heuristics can fill.
const (
	FieldEligible       = "V1IsEligibleForFeeExemption"
	FieldExistingClient = "V1IsExistingExemptClient"
	FieldClientNumber   = "V1FeeExemptionClientNumber"
	FieldCategory       = "V1FeeExemptionCategory"
	FieldSupporting     = "V1FeeExemptionSupportingInfo"
)

var (
	reYesNo        = regexp.MustCompile(`(?i)\b(yes|no)\b`)
	reClientNumber = regexp.MustCompile(`(?i)\bclient(?:\s*(?:no\.?|number))?\s*[:#]?\s*([A-Za-z0-9-]+)\b`)
	reCategory     = regexp.MustCompile(`(?i)\bcategory\s*[:-]\s*([^\n\r;,.]{1,80})`)
	reSupporting   = regexp.MustCompile(`(?i)\bsupporting\s*(?:info|information)\s*[:-]\s*(.{10,400})`)
	reDigit        = regexp.MustCompile(`\d`)
)

// permissionSuggestions emits fee exemption suggestions only for explicit
// phrases. A client number must contain a digit, so "client yes" is not read
// as one.
func permissionSuggestions(message string) []Suggestion {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var out []Suggestion
	add := func(field, value string, confidence float64, rationale string) {
		out = append(out, Suggestion{
			FieldID:    field,
			Value:      value,
			Confidence: confidence,
			Rationale:  rationale,
			Agent:      "PermissionsAgent",
		})
	}

	if strings.Contains(lowered, "fee exempt") {
		if yn, ok := yesNo(lowered); ok {
			add(FieldEligible, yn, 0.85, "Detected explicit yes/no regarding fee exemption.")
		}
	}
	if strings.Contains(lowered, "existing exempt client") || strings.Contains(lowered, "existing exemption client") {
		if yn, ok := yesNo(lowered); ok {
			add(FieldExistingClient, yn, 0.8, "Detected explicit yes/no for existing exempt client status.")
		}
	}
	for _, m := range reClientNumber.FindAllStringSubmatch(text, -1) {
		if reDigit.MatchString(m[1]) {
			add(FieldClientNumber, m[1], 0.9, "Detected an explicit client number in the text.")
			break
		}
	}
	if m := reCategory.FindStringSubmatch(text); m != nil {
		if v := strings.TrimRight(strings.TrimSpace(m[1]), " .;,:"); v != "" {
			add(FieldCategory, v, 0.75, "Detected an explicit category assignment.")
		}
	}
	if m := reSupporting.FindStringSubmatch(text); m != nil {
		add(FieldSupporting, strings.TrimSpace(m[1]), 0.7, "Detected explicit supporting information segment.")
	}
	return out
}

func yesNo(lowered string) (string, bool) {
	m := reYesNo.FindStringSubmatch(lowered)
	if m == nil {
		return "", false
	}
	if m[1] == "yes" {
		return "Yes", true
	}
	return "No", true
}
