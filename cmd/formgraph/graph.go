package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/orchestrator"
	"github.com/smallnest/formgraph/pipeline"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the pipeline or the /process routing graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			workflow, _ := cmd.Flags().GetString("workflow")

			var out string
			switch workflow {
			case "fill":
				p, err := pipeline.New(pipeline.Options{})
				if err != nil {
					return err
				}
				out, err = draw(p.Graph(), format)
				if err != nil {
					return err
				}
			case "process":
				o, err := orchestrator.New(orchestrator.Options{})
				if err != nil {
					return err
				}
				out, err = draw(o.Graph(), format)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown workflow %q, want fill or process", workflow)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().String("format", "mermaid", "Output format: mermaid or dot")
	cmd.Flags().String("workflow", "fill", "Graph to print: fill or process")
	return cmd
}

func draw[S any](g *graph.StateGraph[S], format string) (string, error) {
	exporter := graph.NewExporter(g)
	switch format {
	case "mermaid":
		return exporter.DrawMermaid(), nil
	case "dot":
		return exporter.DrawDOT(), nil
	default:
		return "", fmt.Errorf("unknown format %q, want mermaid or dot", format)
	}
}
