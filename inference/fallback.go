package inference

import (
	"context"
	"errors"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/log"
)

// Fallback tries Primary first and uses Secondary when Primary fails.
// Context errors are returned as is.
type Fallback struct {
	primary   Inferer
	secondary Inferer
}

// NewFallback chains two inferers.
func NewFallback(primary, secondary Inferer) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// Infer implements Inferer.
func (f *Fallback) Infer(ctx context.Context, text string, fields []form.FormField) (map[string]string, error) {
	out, err := f.primary.Infer(ctx, text, fields)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	log.Warn("primary inference failed, using fallback: %v", err)
	return f.secondary.Infer(ctx, text, fields)
}

// FallbackQuestioner tries the primary questioner first, then the secondary.
type FallbackQuestioner struct {
	primary   Questioner
	secondary Questioner
}

// NewFallbackQuestioner chains two questioners.
func NewFallbackQuestioner(primary, secondary Questioner) *FallbackQuestioner {
	return &FallbackQuestioner{primary: primary, secondary: secondary}
}

// GenerateQuestion implements Questioner.
func (f *FallbackQuestioner) GenerateQuestion(ctx context.Context, field form.FormField, reason form.ValidationError) (string, error) {
	q, err := f.primary.GenerateQuestion(ctx, field, reason)
	if err == nil && q != "" {
		return q, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		log.Warn("primary question generation failed for %s, using fallback: %v", field.DataID, err)
	}
	return f.secondary.GenerateQuestion(ctx, field, reason)
}
