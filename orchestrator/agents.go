package orchestrator

import (
	"fmt"
	"strings"

	"github.com/smallnest/formgraph/form"
)

type keyword struct {
	word string
	Detection
}

// Keyword tables are matched as lowercase substrings of the message, in
// table order.
var sourceKeywords = []keyword{
	{"fraser river", Detection{Type: "river", Description: "Major river system in British Columbia"}},
	{"lake", Detection{Type: "surface_water", Description: "Natural or artificial lake water source"}},
	{"well", Detection{Type: "groundwater", Description: "Groundwater extraction point"}},
	{"creek", Detection{Type: "surface_water", Description: "Small watercourse or stream"}},
	{"groundwater", Detection{Type: "groundwater", Description: "Underground water source"}},
	{"reservoir", Detection{Type: "surface_water", Description: "Water storage facility"}},
	{"stream", Detection{Type: "surface_water", Description: "Natural flowing watercourse"}},
}

var usageKeywords = []keyword{
	{"irrigation", Detection{Type: "agricultural", Description: "Agricultural irrigation purposes", Priority: "high"}},
	{"industrial", Detection{Type: "industrial", Description: "Industrial processing and manufacturing", Priority: "high"}},
	{"domestic", Detection{Type: "municipal", Description: "Domestic water supply", Priority: "medium"}},
	{"mining", Detection{Type: "industrial", Description: "Mining operations and extraction", Priority: "high"}},
	{"power", Detection{Type: "industrial", Description: "Power generation and hydroelectric use", Priority: "high"}},
	{"conservation", Detection{Type: "environmental", Description: "Water conservation and storage", Priority: "medium"}},
	{"cooling", Detection{Type: "industrial", Description: "Industrial cooling processes", Priority: "medium"}},
	{"livestock", Detection{Type: "agricultural", Description: "Livestock watering", Priority: "medium"}},
	{"fire protection", Detection{Type: "emergency", Description: "Fire protection and suppression", Priority: "high"}},
}

var permissionKeywords = []keyword{
	{"water sustainability act", Detection{Type: "legislation", Description: "BC Water Sustainability Act compliance"}},
	{"environmental assessment", Detection{Type: "assessment", Description: "Environmental impact assessment required"}},
	{"first nation consultation", Detection{Type: "consultation", Description: "First Nation consultation requirements"}},
	{"fee exemption", Detection{Type: "exemption", Description: "Government/First Nation fee exemption eligibility"}},
	{"water license", Detection{Type: "license", Description: "Water use license requirements"}},
	{"groundwater", Detection{Type: "regulation", Description: "Groundwater use regulations"}},
}

var usageEstimates = map[string]string{
	"irrigation": "2-5 acre-feet per acre annually",
	"domestic":   "0.5-1 acre-foot per household annually",
	"livestock":  "Variable based on animal type and count",
}

// Field label terms that assign a form field to an agent.
var (
	sourceLabelTerms     = []string{"source", "location", "body of water", "intake"}
	usageLabelTerms      = []string{"purpose", "use", "usage", "application"}
	permissionLabelTerms = []string{"permit", "license", "authorization", "exemption", "compliance", "regulation"}
)

func detect(lowered string, table []keyword) []Detection {
	var out []Detection
	for _, k := range table {
		if strings.Contains(lowered, k.word) {
			d := k.Detection
			d.Keyword = k.word
			out = append(out, d)
		}
	}
	return out
}

func fieldsLabelled(fields []form.FormField, terms []string) []FieldRef {
	var out []FieldRef
	for _, f := range fields {
		label := strings.ToLower(f.Label)
		if label == "" {
			continue
		}
		for _, term := range terms {
			if strings.Contains(label, term) {
				out = append(out, FieldRef{DataID: f.DataID, Label: f.Label, Type: f.Type, Value: f.Value})
				break
			}
		}
	}
	return out
}

func analyzeSource(message string, fields []form.FormField) Report {
	detected := detect(strings.ToLower(message), sourceKeywords)
	r := Report{
		Agent:            "SourceAgent",
		Status:           StatusSuccess,
		Query:            message,
		Detected:         detected,
		Fields:           fieldsLabelled(fields, sourceLabelTerms),
		Analysis:         fmt.Sprintf("Found %d potential water sources", len(detected)),
		ProcessingMethod: "rule_based",
	}
	if len(detected) > 0 {
		r.Recommendations = []string{
			"Specify exact coordinates if using groundwater",
			"Provide water rights documentation for surface water",
			"Include seasonal flow information for streams/rivers",
		}
	} else {
		r.Recommendations = []string{"Please specify the water source location and type"}
		r.Message = "No water source found in the request."
	}
	return r
}

func analyzeUsage(message string, fields []form.FormField) Report {
	detected := detect(strings.ToLower(message), usageKeywords)
	r := Report{
		Agent:            "UsageAgent",
		Status:           StatusSuccess,
		Query:            message,
		Detected:         detected,
		Fields:           fieldsLabelled(fields, usageLabelTerms),
		Analysis:         fmt.Sprintf("Found %d usage types", len(detected)),
		ProcessingMethod: "rule_based",
	}
	for _, d := range detected {
		if est, ok := usageEstimates[d.Keyword]; ok {
			r.Estimates = append(r.Estimates, Estimate{Usage: d.Keyword, Estimate: est})
		}
	}
	if len(detected) > 0 {
		r.Recommendations = []string{
			"Specify exact water quantities needed",
			"Provide detailed usage schedule (seasonal, daily)",
			"Include efficiency measures planned",
		}
	} else {
		r.Recommendations = []string{"Please specify the intended water usage purpose"}
		r.Message = "No water usage found in the request."
	}
	return r
}

func analyzePermissions(message string, fields []form.FormField) Report {
	detected := detect(strings.ToLower(message), permissionKeywords)
	suggestions := permissionSuggestions(message)
	r := Report{
		Agent:            "PermissionsAgent",
		Status:           StatusSuccess,
		Query:            message,
		Detected:         detected,
		Fields:           fieldsLabelled(fields, permissionLabelTerms),
		Suggestions:      suggestions,
		Analysis:         fmt.Sprintf("Found %d compliance requirements", len(detected)),
		ProcessingMethod: "rule_based",
	}
	if len(detected) > 0 {
		r.Recommendations = []string{
			"Review BC Water Sustainability Act requirements",
			"Check First Nation consultation obligations",
			"Verify environmental assessment needs",
			"Confirm fee exemption eligibility criteria",
		}
	} else {
		r.Recommendations = []string{"Please specify the regulatory requirements or compliance concerns"}
	}
	if len(detected) == 0 && len(suggestions) == 0 {
		r.Message = "No compliance guidance found."
	}
	return r
}
