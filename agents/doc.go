// Package agents implements the stages of the form filling pipeline that
// carry state between the analyzer and the validator: input normalization,
// information extraction, auto-fill with confidence scoring, and question
// generation.
//
// Stages are plain structs with no shared mutable state and may be reused
// across requests.
package agents
