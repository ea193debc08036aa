package agents

import "github.com/smallnest/formgraph/form"

// ConfidencePolicy turns value sources into a confidence score.
type ConfidencePolicy struct {
	Weights map[Tier]float64
	// ViolationPenalty is subtracted per violation, up to MaxPenalty.
	ViolationPenalty float64
	MaxPenalty       float64
}

// DefaultConfidencePolicy returns the standard weight table.
func DefaultConfidencePolicy() ConfidencePolicy {
	return ConfidencePolicy{
		Weights: map[Tier]float64{
			TierProvided: 1.0,
			TierExact:    1.0,
			TierInferred: 0.7,
			TierContext:  0.5,
			TierDefault:  0.3,
		},
		ViolationPenalty: 0.1,
		MaxPenalty:       0.3,
	}
}

// Score is the mean weight over relevant fields, counting empty fields as 0.
// It is 0 when no field is relevant.
func (p ConfidencePolicy) Score(fields []form.FormField, sources map[string]Tier, inactive map[string]bool) float64 {
	relevant := 0
	total := 0.0
	for _, f := range fields {
		if inactive[f.DataID] {
			continue
		}
		relevant++
		if f.IsEmpty() {
			continue
		}
		tier, ok := sources[f.DataID]
		if !ok {
			tier = TierProvided
		}
		total += p.Weights[tier]
	}
	if relevant == 0 {
		return 0
	}
	return clamp(total / float64(relevant))
}

// Penalize lowers score for violations and clamps the result to [0,1].
func (p ConfidencePolicy) Penalize(score float64, violations int) float64 {
	penalty := p.ViolationPenalty * float64(violations)
	if penalty > p.MaxPenalty {
		penalty = p.MaxPenalty
	}
	return clamp(score - penalty)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
