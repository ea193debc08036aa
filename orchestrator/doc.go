// Package orchestrator implements the /process workflow: a routing node picks
// the source, usage and permissions agents that apply to a free-text request,
// the chosen agents run concurrently, and a summary node counts the outcome.
//
// The agents are keyword and pattern based. The permissions agent also emits
// fee exemption suggestions, each with its own confidence, that a client can
// apply to the fill-form fields.
package orchestrator
