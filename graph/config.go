package graph

import (
	"context"

	"github.com/google/uuid"
)

// Config carries per-invocation settings through the context.
type Config struct {
	// RunID identifies one invocation. Generated when empty.
	RunID string

	// Tags are free-form labels attached to the invocation.
	Tags []string

	// Metadata is copied into checkpoints written during the invocation.
	Metadata map[string]any
}

type configKey struct{}

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// GetConfig retrieves the config from the context, or nil.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}

// RunIDFromContext returns the run ID of the current invocation, or "".
func RunIDFromContext(ctx context.Context) string {
	if c := GetConfig(ctx); c != nil {
		return c.RunID
	}
	return ""
}

func generateRunID() string {
	return uuid.NewString()
}
