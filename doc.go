// formgraph - Filling Structured Forms from Free Text in Go
//
// formgraph takes a free-text message and a list of form fields, and returns
// the form filled as far as the message, the caller's context and a rule table
// allow. Whatever is still missing or invalid comes back as a list of
// questions for the user. The work runs as a staged graph: normalize, analyze,
// extract_info, auto_fill, validate, then ask_questions or complete.
//
// # Quick Start
//
// Install the command:
//
//	go install github.com/smallnest/formgraph/cmd/formgraph@latest
//
// Serve the HTTP API:
//
//	formgraph serve --addr :8000
//
// Or use the pipeline directly:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/formgraph/form"
//		"github.com/smallnest/formgraph/inference"
//		"github.com/smallnest/formgraph/pipeline"
//	)
//
//	func main() {
//		p, _ := pipeline.New(pipeline.Options{Inferer: inference.NewRules(nil)})
//
//		resp, _ := p.Run(context.Background(), &form.Request{
//			Message: "I work for the federal government",
//			FormFields: []form.FormField{{
//				DataID:   "V1FeeExemptionCategory",
//				Label:    "*Fee Exemption Category:",
//				Type:     form.FieldSelectOne,
//				Required: true,
//				Options:  []string{"Federal Government", "Provincial Government"},
//			}},
//		})
//		fmt.Println(resp.Status, resp.Result.FilledFields)
//	}
//
// # Packages
//
// form/
// Field and request types, the dependency rule table, structure analysis
// and field validation.
//
// inference/
// The Inferer and Questioner contracts with a deterministic rule based
// implementation, a langchaingo LLM implementation and the Fallback,
// Cached and Timeout decorators.
//
// agents/
// The stage workers: Normalizer, Extractor, AutoFiller, QuestionGenerator and
// the ConfidencePolicy.
//
// pipeline/
// Wires the agents into a graph.StateGraph and assembles the response.
//
// orchestrator/
// Routes a free-text request to the source, usage and permissions agents,
// which run in parallel, and summarizes their reports.
//
// graph/
// A typed state graph with field merging, conditional edges and fan-out,
// node timeouts, listeners, tracing, per-step checkpointing and Mermaid/DOT
// export.
//
// store/
// Checkpoint stores for the run audit trail: memory, redis, sqlite and
// postgres.
//
// server/, metrics/, config/, log/
// The chi HTTP API, Prometheus collectors, koanf configuration and leveled
// logging.
//
// # Configuration
//
// Settings come from defaults, an optional YAML file (--config) and
// FORMGRAPH_* environment variables, for example:
//
//   - FORMGRAPH_SERVER_ADDR: listen address
//   - FORMGRAPH_LLM_PROVIDER: none or openai
//   - FORMGRAPH_LLM_API_KEY: API key for the openai provider
//   - FORMGRAPH_AUDIT_BACKEND: none, memory, redis, sqlite or postgres
//   - FORMGRAPH_LOG_LEVEL: debug, info, warn, error or none
//
// # License
//
// This project is licensed under the MIT License - see the LICENSE file for details.
package formgraph // import "github.com/smallnest/formgraph"
