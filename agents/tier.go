package agents

// Tier records where a field value came from. It drives the confidence score.
type Tier string

const (
	TierProvided Tier = "provided"
	TierExact    Tier = "exact"
	TierInferred Tier = "inferred"
	TierContext  Tier = "context"
	TierDefault  Tier = "default"
)

// Candidate is one value proposed by extraction.
type Candidate struct {
	Value string `json:"value"`
	Tier  Tier   `json:"tier"`
}
