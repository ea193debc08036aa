package server

import (
	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/pipeline"
)

// Agent describes one stage of the workflow.
type Agent struct {
	Purpose      string   `json:"purpose"`
	Capabilities []string `json:"capabilities"`
}

// WorkflowInfo is the body of GET /agenticai/workflow-info.
type WorkflowInfo struct {
	WorkflowName        string           `json:"workflow_name"`
	Description         string           `json:"description"`
	Agents              map[string]Agent `json:"agents"`
	WorkflowSteps       []string         `json:"workflow_steps"`
	Stages              []pipeline.Stage `json:"stages"`
	SupportedFieldTypes []string         `json:"supported_field_types"`
	Features            []string         `json:"features"`
	Mermaid             string           `json:"mermaid"`
}

func describeWorkflow(p *pipeline.Pipeline) WorkflowInfo {
	return WorkflowInfo{
		WorkflowName: "Intelligent Form Filling Workflow",
		Description:  "Multi-agent system for intelligent form processing and auto-completion",
		Agents: map[string]Agent{
			"form_analyzer": {
				Purpose:      "Analyze form structure, identify required fields, and understand dependencies",
				Capabilities: []string{"Field requirement analysis", "Dependency mapping", "Completion tracking"},
			},
			"information_extractor": {
				Purpose:      "Extract relevant information from user messages",
				Capabilities: []string{"Natural language processing", "Entity extraction", "Context understanding"},
			},
			"auto_fill_agent": {
				Purpose:      "Intelligently populate form fields",
				Capabilities: []string{"Smart field mapping", "Business logic application", "Value suggestion"},
			},
			"validation_agent": {
				Purpose:      "Validate form data and check business rules",
				Capabilities: []string{"Field validation", "Business rule checking", "Error detection"},
			},
			"question_generator": {
				Purpose:      "Generate clarifying questions for missing information",
				Capabilities: []string{"Smart question generation", "Context-aware prompts", "User guidance"},
			},
		},
		WorkflowSteps: []string{
			"1. Form Analysis - Understand structure and requirements",
			"2. Information Extraction - Parse user input for relevant data",
			"3. Auto-Fill - Populate fields based on extracted information",
			"4. Validation - Check data completeness and correctness",
			"5. Question Generation - Create questions for missing information",
		},
		Stages: []pipeline.Stage{
			pipeline.StageNormalize,
			pipeline.StageAnalyze,
			pipeline.StageExtract,
			pipeline.StageAutoFill,
			pipeline.StageValidate,
			pipeline.StageAskQuestions,
			pipeline.StageComplete,
		},
		SupportedFieldTypes: []string{"text", "textarea", "radio", "select-one", "checkbox", "email", "number", "date"},
		Features: []string{
			"Intelligent auto-completion",
			"Context-aware field mapping",
			"Business rule validation",
			"Missing information detection",
			"Smart question generation",
			"Confidence scoring",
			"Multi-step workflow processing",
		},
		Mermaid: graph.NewExporter(p.Graph()).DrawMermaid(),
	}
}
