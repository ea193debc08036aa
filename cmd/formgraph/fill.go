package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smallnest/formgraph/config"
	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/orchestrator"
	"github.com/smallnest/formgraph/pipeline"
)

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Run the pipeline on a request file",
		Long:  `Reads a fill-form request as JSON ("-" for stdin), runs the full pipeline and prints the result.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(cmd)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			var tracer *graph.Tracer
			if trace, _ := cmd.Flags().GetBool("trace"); trace {
				tracer = graph.NewTracer()
				tracer.AddHook(traceWriter(cmd.ErrOrStderr()))
			}
			a, err := newApp(cmd.Context(), cfg, tracer)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.pipeline.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderResponse(resp))
			return err
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the raw JSON response")
	cmd.Flags().Bool("trace", false, "Print per-stage timings to stderr")
	return cmd
}

// traceWriter prints one line per finished stage and a total for the run.
func traceWriter(w io.Writer) graph.TraceHook {
	return graph.TraceHookFunc(func(_ context.Context, span *graph.TraceSpan) {
		switch span.Event {
		case graph.TraceEventNodeEnd:
			fmt.Fprintf(w, "trace %-14s %v\n", span.NodeName, span.Duration.Round(time.Microsecond))
		case graph.TraceEventNodeError:
			fmt.Fprintf(w, "trace %-14s %v error: %v\n", span.NodeName, span.Duration.Round(time.Microsecond), span.Error)
		case graph.TraceEventGraphEnd:
			fmt.Fprintf(w, "trace %-14s %v\n", "total", span.Duration.Round(time.Microsecond))
		}
	})
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a request file without auto-filling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(cmd)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := setupLogger(cfg.Log); err != nil {
				return err
			}
			rules, err := form.LoadRules(cfg.Rules.Path)
			if err != nil {
				return err
			}
			p, err := pipeline.New(pipeline.Options{Rules: rules})
			if err != nil {
				return err
			}
			report, err := p.Validate(req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	addRequestFlags(cmd)
	return cmd
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Route a request to the source, usage and permissions agents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rd, closeFn, err := openRequest(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			req, err := orchestrator.DecodeRequest(rd)
			if err != nil {
				return err
			}
			o, err := orchestrator.New(orchestrator.Options{})
			if err != nil {
				return err
			}
			resp, err := o.Process(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	addRequestFlags(cmd)
	return cmd
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", `Request JSON file, "-" for stdin`)
	_ = cmd.MarkFlagRequired("file")
}

// openRequest opens the --file argument; "-" reads stdin.
func openRequest(cmd *cobra.Command) (io.Reader, func() error, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "-" {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open request: %w", err)
	}
	return f, f.Close, nil
}

func readRequest(cmd *cobra.Command) (*form.Request, error) {
	rd, closeFn, err := openRequest(cmd)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return form.DecodeRequest(rd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
