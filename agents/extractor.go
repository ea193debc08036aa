package agents

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/inference"
	"github.com/smallnest/formgraph/log"
)

// Extractor asks an Inferer for candidate values. Inference failures never
// leave the stage: they are logged, reported to OnFailure and treated as no
// extraction.
type Extractor struct {
	inferer     inference.Inferer
	concurrency int
	onFailure   func(error)
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithConcurrency asks the inferer once per field with up to n calls in
// flight. n <= 1 means one call for the whole form.
func WithConcurrency(n int) ExtractorOption {
	return func(e *Extractor) { e.concurrency = n }
}

// WithFailureHook registers a callback invoked for every inference failure.
// It may be called from several goroutines at once.
func WithFailureHook(fn func(error)) ExtractorOption {
	return func(e *Extractor) { e.onFailure = fn }
}

// NewExtractor creates an extraction stage.
func NewExtractor(inferer inference.Inferer, opts ...ExtractorOption) *Extractor {
	e := &Extractor{inferer: inferer, concurrency: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns candidates keyed by data id. Candidates for ids not in
// fields are dropped.
func (e *Extractor) Extract(ctx context.Context, message string, fields []form.FormField) map[string]Candidate {
	out := make(map[string]Candidate)
	if e.inferer == nil || len(fields) == 0 {
		return out
	}

	var perField []map[string]string
	if e.concurrency > 1 && len(fields) > 1 {
		perField = e.fanOut(ctx, message, fields)
	} else {
		values, err := e.inferer.Infer(ctx, message, fields)
		if err != nil {
			e.fail(err)
			return out
		}
		perField = []map[string]string{values}
	}

	lower := strings.ToLower(message)
	// Merge in field order so that concurrent results are deterministic.
	for _, values := range perField {
		for _, f := range fields {
			v, ok := values[f.DataID]
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, seen := out[f.DataID]; seen {
				continue
			}
			tier := TierInferred
			if strings.Contains(lower, strings.ToLower(v)) {
				tier = TierExact
			}
			out[f.DataID] = Candidate{Value: v, Tier: tier}
		}
	}
	return out
}

func (e *Extractor) fanOut(ctx context.Context, message string, fields []form.FormField) []map[string]string {
	results := make([]map[string]string, len(fields))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, f := range fields {
		g.Go(func() error {
			values, err := e.inferer.Infer(ctx, message, []form.FormField{f})
			if err != nil {
				e.fail(err)
				return nil
			}
			if v, ok := values[f.DataID]; ok {
				results[i] = map[string]string{f.DataID: v}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Extractor) fail(err error) {
	log.Warn("information extraction failed, continuing without extraction: %v", err)
	if e.onFailure != nil {
		e.onFailure(err)
	}
}
