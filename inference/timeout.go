package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallnest/formgraph/form"
)

// ErrInferenceTimeout is returned by Timeout when a single call exceeds its
// budget while the caller's context is still live.
var ErrInferenceTimeout = errors.New("inference timed out")

// Timeout bounds every call to next by d. A call that runs out of time
// returns ErrInferenceTimeout instead of a context error, so a Fallback in
// front of it still tries its secondary.
type Timeout struct {
	next Inferer
	d    time.Duration
}

// NewTimeout wraps next. d <= 0 disables the bound.
func NewTimeout(next Inferer, d time.Duration) *Timeout {
	return &Timeout{next: next, d: d}
}

// Infer implements Inferer.
func (t *Timeout) Infer(ctx context.Context, text string, fields []form.FormField) (map[string]string, error) {
	if t.d <= 0 {
		return t.next.Infer(ctx, text, fields)
	}
	callCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	out, err := t.next.Infer(callCtx, text, fields)
	if err != nil && ctx.Err() == nil && callCtx.Err() != nil {
		return nil, fmt.Errorf("%w after %v", ErrInferenceTimeout, t.d)
	}
	return out, err
}

// TimeoutQuestioner bounds every GenerateQuestion call to next by d, with the
// same error contract as Timeout.
type TimeoutQuestioner struct {
	next Questioner
	d    time.Duration
}

// NewTimeoutQuestioner wraps next. d <= 0 disables the bound.
func NewTimeoutQuestioner(next Questioner, d time.Duration) *TimeoutQuestioner {
	return &TimeoutQuestioner{next: next, d: d}
}

// GenerateQuestion implements Questioner.
func (t *TimeoutQuestioner) GenerateQuestion(ctx context.Context, field form.FormField, reason form.ValidationError) (string, error) {
	if t.d <= 0 {
		return t.next.GenerateQuestion(ctx, field, reason)
	}
	callCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	q, err := t.next.GenerateQuestion(callCtx, field, reason)
	if err != nil && ctx.Err() == nil && callCtx.Err() != nil {
		return "", fmt.Errorf("%w after %v", ErrInferenceTimeout, t.d)
	}
	return q, err
}
