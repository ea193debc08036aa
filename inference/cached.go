package inference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smallnest/formgraph/form"
)

// Cached memoizes successful inferences keyed by message and field set.
type Cached struct {
	next   Inferer
	cache  *lru.Cache[string, map[string]string]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps next with an LRU cache holding up to size results.
func NewCached(next Inferer, size int) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("inference cache size must be greater than zero, got %d", size)
	}
	cache, err := lru.New[string, map[string]string](size)
	if err != nil {
		return nil, fmt.Errorf("init inference cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Infer implements Inferer.
func (c *Cached) Infer(ctx context.Context, text string, fields []form.FormField) (map[string]string, error) {
	key, err := cacheKey(text, fields)
	if err != nil {
		return c.next.Infer(ctx, text, fields)
	}
	if v, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return maps.Clone(v), nil
	}
	c.misses.Add(1)

	out, err := c.next.Infer(ctx, text, fields)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, maps.Clone(out))
	return out, nil
}

// Stats returns the cache hit and miss counts.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached results.
func (c *Cached) Len() int {
	return c.cache.Len()
}

func cacheKey(text string, fields []form.FormField) (string, error) {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	if err := json.NewEncoder(h).Encode(fields); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
