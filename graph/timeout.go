package graph

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout wraps a node so that it fails with ErrNodeTimeout once d has
// elapsed. The wrapped function receives a context carrying the deadline.
func WithTimeout[S any](name string, fn NodeFunc[S], d time.Duration) NodeFunc[S] {
	if d <= 0 {
		return fn
	}
	return func(ctx context.Context, state S) (S, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			value S
			err   error
		}
		resultChan := make(chan result, 1)

		go func() {
			value, err := fn(timeoutCtx, state)
			resultChan <- result{value: value, err: err}
		}()

		var res result
		select {
		case res = <-resultChan:
			if res.err == nil || timeoutCtx.Err() == nil {
				return res.value, res.err
			}
		case <-timeoutCtx.Done():
		}

		var zero S
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w: %s after %v", ErrNodeTimeout, name, d)
	}
}

// AddNodeWithTimeout adds a node with timeout
func (g *StateGraph[S]) AddNodeWithTimeout(name string, description string, fn NodeFunc[S], timeout time.Duration) {
	g.AddNode(name, description, WithTimeout(name, fn, timeout))
}
