package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter provides methods to export graphs in different formats
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	g := ge.graph
	if g.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		sb.WriteString("    style START fill:#90EE90\n")
	}

	for _, name := range g.order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
	}

	if ge.referencesEnd() {
		sb.WriteString("    END([\"END\"])\n")
		sb.WriteString("    style END fill:#FFB6C1\n")
	}

	if g.entryPoint != "" {
		fmt.Fprintf(&sb, "    START --> %s\n", g.entryPoint)
	}
	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", edge.From, edge.To)
	}

	for _, from := range ge.conditionalSources() {
		targets := g.conditionalTargets[from]
		if len(targets) == 0 {
			fmt.Fprintf(&sb, "    %s -.-> %s_condition((?))\n", from, from)
			fmt.Fprintf(&sb, "    style %s_condition fill:#FFFFE0,stroke:#333,stroke-dasharray: 5 5\n", from)
			continue
		}
		for _, to := range targets {
			fmt.Fprintf(&sb, "    %s -.-> %s\n", from, to)
		}
	}

	if g.entryPoint != "" {
		fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", g.entryPoint)
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (ge *Exporter[S]) DrawDOT() string {
	var sb strings.Builder
	g := ge.graph

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")

	if g.entryPoint != "" {
		sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
		fmt.Fprintf(&sb, "    START -> %s;\n", g.entryPoint)
		fmt.Fprintf(&sb, "    %s [style=filled, fillcolor=lightblue];\n", g.entryPoint)
	}

	if ge.referencesEnd() {
		sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	}

	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "    %s -> %s;\n", edge.From, edge.To)
	}

	for _, from := range ge.conditionalSources() {
		targets := g.conditionalTargets[from]
		if len(targets) == 0 {
			fmt.Fprintf(&sb, "    %s -> %s_condition [style=dashed, label=\"?\"];\n", from, from)
			fmt.Fprintf(&sb, "    %s_condition [label=\"?\", shape=diamond, style=filled, fillcolor=lightyellow];\n", from)
			continue
		}
		for _, to := range targets {
			fmt.Fprintf(&sb, "    %s -> %s [style=dashed];\n", from, to)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func (ge *Exporter[S]) conditionalSources() []string {
	out := make([]string, 0, len(ge.graph.conditionalEdges))
	for from := range ge.graph.conditionalEdges {
		out = append(out, from)
	}
	sort.Strings(out)
	return out
}

func (ge *Exporter[S]) referencesEnd() bool {
	for _, edge := range ge.graph.edges {
		if edge.To == END {
			return true
		}
	}
	for _, targets := range ge.graph.conditionalTargets {
		for _, to := range targets {
			if to == END {
				return true
			}
		}
	}
	return false
}
