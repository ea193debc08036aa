package agents

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/inference"
)

func TestExtractor_Tiers(t *testing.T) {
	inf := inference.InfererFunc(func(context.Context, string, []form.FormField) (map[string]string, error) {
		return map[string]string{
			"V1FeeExemptionCategory":      "Federal Government",
			"V1IsEligibleForFeeExemption": "Yes",
			"Unknown":                     "x",
			"V1FeeExemptionClientNumber":  "  ",
		}, nil
	})

	out := NewExtractor(inf).Extract(context.Background(), "I work for the federal government", form.ExampleFields())
	assert.Equal(t, map[string]Candidate{
		"V1FeeExemptionCategory":      {Value: "Federal Government", Tier: TierExact},
		"V1IsEligibleForFeeExemption": {Value: "Yes", Tier: TierInferred},
	}, out)
}

func TestExtractor_FailureDegrades(t *testing.T) {
	inf := inference.InfererFunc(func(context.Context, string, []form.FormField) (map[string]string, error) {
		return nil, inference.ErrMalformedOutput
	})
	var failures atomic.Int32
	e := NewExtractor(inf, WithFailureHook(func(err error) {
		assert.True(t, errors.Is(err, inference.ErrMalformedOutput))
		failures.Add(1)
	}))

	out := e.Extract(context.Background(), "anything", form.ExampleFields())
	assert.Empty(t, out)
	assert.Equal(t, int32(1), failures.Load())
}

func TestExtractor_FanOutMatchesSingleCall(t *testing.T) {
	rules := inference.NewRules(form.DefaultRules())
	msg := "We are an existing exempt non-profit, client number CL-12345"
	fields := form.ExampleFields()

	single := NewExtractor(rules).Extract(context.Background(), msg, fields)
	for i := 0; i < 5; i++ {
		fanned := NewExtractor(rules, WithConcurrency(3)).Extract(context.Background(), msg, fields)
		assert.Equal(t, single, fanned)
	}
	assert.Len(t, single, 4)
}

func TestExtractor_FanOutPartialFailure(t *testing.T) {
	inf := inference.InfererFunc(func(_ context.Context, _ string, fields []form.FormField) (map[string]string, error) {
		if fields[0].DataID == "b" {
			return nil, errors.New("unavailable")
		}
		return map[string]string{fields[0].DataID: "v-" + fields[0].DataID}, nil
	})
	fields := []form.FormField{
		{DataID: "a", Type: form.FieldText},
		{DataID: "b", Type: form.FieldText},
		{DataID: "c", Type: form.FieldText},
	}
	var failures atomic.Int32
	e := NewExtractor(inf, WithConcurrency(2), WithFailureHook(func(error) { failures.Add(1) }))

	out := e.Extract(context.Background(), "message", fields)
	assert.Equal(t, map[string]Candidate{
		"a": {Value: "v-a", Tier: TierInferred},
		"c": {Value: "v-c", Tier: TierInferred},
	}, out)
	assert.Equal(t, int32(1), failures.Load())
}

func TestExtractor_NilInferer(t *testing.T) {
	assert.Empty(t, NewExtractor(nil).Extract(context.Background(), "x", form.ExampleFields()))
}
