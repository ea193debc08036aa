// Package graph is a small typed state-graph engine.
//
// A StateGraph[S] holds named nodes of type func(ctx, S) (S, error), static
// edges and conditional edges. Compile checks the wiring and returns a
// StateRunnable[S] whose Invoke walks the graph from the entry point until END.
//
// When a schema is set, node results are merged into the running state by
// Schema.Update instead of replacing it. FieldMerger implements that for struct
// states, with per-field merge functions:
//
//	fm := graph.NewFieldMerger(State{})
//	fm.RegisterFieldMerge("Notes", graph.AppendSliceMerge)
//	fm.RegisterFieldMerge("Values", graph.MapUnionMerge)
//	g.SetSchema(fm)
//
// Listeners observe node events, and a CheckpointListener writes the merged
// state to a store.CheckpointStore after every step. An Exporter renders the
// graph as Mermaid or DOT.
package graph
