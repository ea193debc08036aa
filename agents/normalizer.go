package agents

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/formgraph/form"
)

// Normalizer strips markup and redundant whitespace from the message before
// any other stage sees it. Field values are caller data and are only trimmed.
type Normalizer struct {
	policy *bluemonday.Policy
}

// NewNormalizer creates a normalizer with a strict (no markup) policy.
func NewNormalizer() *Normalizer {
	return &Normalizer{policy: bluemonday.StrictPolicy()}
}

// Text sanitizes s and collapses runs of whitespace.
func (n *Normalizer) Text(s string) string {
	if s == "" {
		return ""
	}
	clean := html.UnescapeString(n.policy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

// Normalize returns the cleaned message and a trimmed copy of fields. The
// "*" label marker is folded into Required.
func (n *Normalizer) Normalize(message string, fields []form.FormField) (string, []form.FormField) {
	out := form.Clone(fields)
	for i := range out {
		f := &out[i]
		f.DataID = strings.TrimSpace(f.DataID)
		f.Value = strings.TrimSpace(f.Value)
		f.Required = f.IsRequired()
		for j, opt := range f.Options {
			f.Options[j] = strings.TrimSpace(opt)
		}
	}
	return n.Text(message), out
}
