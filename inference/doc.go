// Package inference defines the narrow contracts the pipeline uses for
// natural-language work and ships three implementations of them.
//
// LLM calls a langchaingo model and parses the first JSON object of its
// reply. Rules is deterministic and needs no network. Fallback and
// FallbackQuestioner chain the two, and Cached memoizes results in an LRU.
//
//	model, _ := openai.New()
//	rules := inference.NewRules(form.DefaultRules())
//	inferer := inference.NewFallback(inference.NewLLM(model), rules)
package inference
