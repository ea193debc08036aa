package inference

import (
	"context"
	"errors"

	"github.com/smallnest/formgraph/form"
)

var (
	// ErrMalformedOutput is returned when a model reply cannot be parsed.
	ErrMalformedOutput = errors.New("malformed inference output")

	// ErrEmptyOutput is returned when a model reply has no usable content.
	ErrEmptyOutput = errors.New("empty inference output")
)

// Inferer maps a free-text message onto candidate field values. The result
// is partial: a data id is absent when no value could be inferred.
type Inferer interface {
	Infer(ctx context.Context, text string, fields []form.FormField) (map[string]string, error)
}

// Questioner words a clarifying question for a field that is missing or
// invalid.
type Questioner interface {
	GenerateQuestion(ctx context.Context, field form.FormField, reason form.ValidationError) (string, error)
}

// InfererFunc adapts a function to Inferer.
type InfererFunc func(ctx context.Context, text string, fields []form.FormField) (map[string]string, error)

// Infer implements Inferer.
func (f InfererFunc) Infer(ctx context.Context, text string, fields []form.FormField) (map[string]string, error) {
	return f(ctx, text, fields)
}

// QuestionerFunc adapts a function to Questioner.
type QuestionerFunc func(ctx context.Context, field form.FormField, reason form.ValidationError) (string, error)

// GenerateQuestion implements Questioner.
func (f QuestionerFunc) GenerateQuestion(ctx context.Context, field form.FormField, reason form.ValidationError) (string, error) {
	return f(ctx, field, reason)
}
