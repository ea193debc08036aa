package graph

import (
	"context"

	"github.com/smallnest/formgraph/log"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed successfully
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"
)

// NodeListener defines the interface for typed node event listeners
type NodeListener[S any] interface {
	// OnNodeEvent is called when a node event occurs. On NodeEventComplete the
	// state is the node's own result, before it is merged.
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc[S any] func(ctx context.Context, event NodeEvent, nodeName string, state S, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc[S]) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	f(ctx, event, nodeName, state, err)
}

// StepListener is implemented by listeners that also want the merged state
// after every step.
type StepListener[S any] interface {
	OnGraphStep(ctx context.Context, nodeName string, state S)
}

func (r *StateRunnable[S]) notify(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	for _, l := range r.listeners {
		func() {
			defer func() {
				if p := recover(); p != nil {
					log.Warn("listener panicked on %s/%s: %v", nodeName, event, p)
				}
			}()
			l.OnNodeEvent(ctx, event, nodeName, state, err)
		}()
	}
}

func (r *StateRunnable[S]) notifyStep(ctx context.Context, nodeName string, state S) {
	for _, l := range r.listeners {
		sl, ok := l.(StepListener[S])
		if !ok {
			continue
		}
		func() {
			defer func() {
				if p := recover(); p != nil {
					log.Warn("step listener panicked on %s: %v", nodeName, p)
				}
			}()
			sl.OnGraphStep(ctx, nodeName, state)
		}()
	}
}
