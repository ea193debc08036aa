// Package pipeline wires the form filling stages into a state graph:
//
//	normalize -> analyze -> extract_info -> auto_fill -> validate
//	validate -> ask_questions -> complete   (something missing or invalid)
//	validate -> complete                   (nothing missing, nothing invalid)
//
// Every request gets its own FormRunState. Stages return partial states that
// are merged by the schema from NewSchema, so a later stage never drops what
// an earlier one found.
package pipeline
