package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/formgraph/agents"
	"github.com/smallnest/formgraph/config"
	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/graph"
	"github.com/smallnest/formgraph/inference"
	"github.com/smallnest/formgraph/log"
	"github.com/smallnest/formgraph/metrics"
	"github.com/smallnest/formgraph/orchestrator"
	"github.com/smallnest/formgraph/pipeline"
	"github.com/smallnest/formgraph/store"
	"github.com/smallnest/formgraph/store/memory"
	"github.com/smallnest/formgraph/store/postgres"
	"github.com/smallnest/formgraph/store/redis"
	"github.com/smallnest/formgraph/store/sqlite"
)

// app holds the wired components of one process.
type app struct {
	cfg          *config.Config
	pipeline     *pipeline.Pipeline
	orchestrator *orchestrator.Orchestrator
	metrics      *metrics.Metrics
	closers      []func() error
}

// newApp wires the pipeline from cfg. tracer may be nil.
func newApp(ctx context.Context, cfg *config.Config, tracer *graph.Tracer) (*app, error) {
	if err := setupLogger(cfg.Log); err != nil {
		return nil, err
	}

	rules, err := form.LoadRules(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}

	inferer, questioner, err := buildInference(cfg.LLM, cfg.Extraction, rules)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, metrics: metrics.New()}

	st, closer, err := buildStore(ctx, cfg.Audit)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	policy := confidencePolicy(cfg.Confidence)
	a.pipeline, err = pipeline.New(pipeline.Options{
		Rules:              rules,
		Inferer:            inferer,
		Questioner:         questioner,
		Policy:             &policy,
		Timeout:            cfg.Server.RequestTimeout,
		StageTimeout:       cfg.LLM.StageTimeout,
		Concurrency:        cfg.Extraction.Concurrency,
		Store:              st,
		Listeners:          []graph.NodeListener[pipeline.FormRunState]{a.metrics},
		OnInferenceFailure: a.metrics.InferenceFailure,
		Tracer:             tracer,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.orchestrator, err = orchestrator.New(orchestrator.Options{
		Timeout: cfg.Server.RequestTimeout,
		Tracer:  tracer,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the audit store.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func setupLogger(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	switch cfg.Backend {
	case "golog":
		log.SetDefaultLogger(log.NewGologLoggerWithOutput(os.Stderr, level))
	default:
		log.SetDefaultLogger(log.NewDefaultLogger(level))
	}
	return nil
}

// buildInference returns the deterministic rules, or an LLM backed chain that
// degrades to the rules on failure.
func buildInference(cfg config.LLMConfig, ext config.ExtractionConfig, table *form.RuleTable) (inference.Inferer, inference.Questioner, error) {
	rules := inference.NewRules(table)
	if cfg.Provider != "openai" {
		return rules, rules, nil
	}

	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create openai client: %w", err)
	}
	llm := inference.NewLLM(model,
		inference.WithExtractionTemperature(cfg.ExtractionTemperature),
		inference.WithQuestionTemperature(cfg.QuestionTemperature))

	var primary inference.Inferer = inference.NewTimeout(llm, cfg.Timeout)
	if ext.CacheSize > 0 {
		cached, err := inference.NewCached(primary, ext.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		primary = cached
	}
	questioner := inference.NewFallbackQuestioner(inference.NewTimeoutQuestioner(llm, cfg.Timeout), rules)
	return inference.NewFallback(primary, rules), questioner, nil
}

// buildStore opens the audit backend. The returned closer may be nil.
func buildStore(ctx context.Context, cfg config.AuditConfig) (store.CheckpointStore, func() error, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil, nil
	case "memory":
		return memory.NewMemoryCheckpointStore(), nil, nil
	case "redis":
		s := redis.NewRedisCheckpointStore(redis.RedisOptions{Addr: cfg.DSN, TTL: cfg.TTL})
		return s, s.Close, nil
	case "sqlite":
		s, err := sqlite.NewSqliteCheckpointStore(ctx, sqlite.SqliteOptions{Path: cfg.DSN, TableName: cfg.Table})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite audit store: %w", err)
		}
		return s, s.Close, nil
	case "postgres":
		s, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{ConnString: cfg.DSN, TableName: cfg.Table})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres audit store: %w", err)
		}
		return s, func() error { s.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

func confidencePolicy(cfg config.ConfidenceConfig) agents.ConfidencePolicy {
	return agents.ConfidencePolicy{
		Weights: map[agents.Tier]float64{
			agents.TierProvided: cfg.Provided,
			agents.TierExact:    cfg.Exact,
			agents.TierInferred: cfg.Inferred,
			agents.TierContext:  cfg.Context,
			agents.TierDefault:  cfg.Default,
		},
		ViolationPenalty: cfg.ViolationPenalty,
		MaxPenalty:       cfg.MaxPenalty,
	}
}
