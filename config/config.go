// Package config loads formgraph settings from defaults, an optional YAML
// file and FORMGRAPH_* environment variables, in increasing precedence.
package config

import (
	"time"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// FORMGRAPH_SERVER_REQUEST_TIMEOUT=45s sets server.request_timeout.
const EnvPrefix = "FORMGRAPH_"

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	LLM        LLMConfig        `koanf:"llm"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Confidence ConfidenceConfig `koanf:"confidence"`
	Rules      RulesConfig      `koanf:"rules"`
	Audit      AuditConfig      `koanf:"audit"`
	Log        LogConfig        `koanf:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gte=0"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// LLMConfig selects the inference backend. Provider "none" uses the
// deterministic rules only.
type LLMConfig struct {
	Provider              string        `koanf:"provider" validate:"oneof=none openai"`
	Model                 string        `koanf:"model"`
	BaseURL               string        `koanf:"base_url" validate:"omitempty,url"`
	APIKey                string        `koanf:"api_key"`
	Timeout               time.Duration `koanf:"timeout" validate:"gte=0"`
	StageTimeout          time.Duration `koanf:"stage_timeout" validate:"gte=0"`
	ExtractionTemperature float64       `koanf:"extraction_temperature" validate:"gte=0,lte=2"`
	QuestionTemperature   float64       `koanf:"question_temperature" validate:"gte=0,lte=2"`
}

// ExtractionConfig tunes the extraction stage.
type ExtractionConfig struct {
	Concurrency int `koanf:"concurrency" validate:"gte=1,lte=64"`
	// CacheSize is the number of inference results kept in memory; 0 disables the cache.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`
}

// ConfidenceConfig is the confidence weight table.
type ConfidenceConfig struct {
	Provided         float64 `koanf:"provided" validate:"gte=0,lte=1"`
	Exact            float64 `koanf:"exact" validate:"gte=0,lte=1"`
	Inferred         float64 `koanf:"inferred" validate:"gte=0,lte=1"`
	Context          float64 `koanf:"context" validate:"gte=0,lte=1"`
	Default          float64 `koanf:"default" validate:"gte=0,lte=1"`
	ViolationPenalty float64 `koanf:"violation_penalty" validate:"gte=0,lte=1"`
	MaxPenalty       float64 `koanf:"max_penalty" validate:"gte=0,lte=1"`
}

// RulesConfig points at a rule table; empty uses the embedded one.
type RulesConfig struct {
	Path string `koanf:"path"`
}

// AuditConfig selects where run checkpoints are stored.
type AuditConfig struct {
	Backend string `koanf:"backend" validate:"oneof=none memory redis sqlite postgres"`
	// DSN is the redis address, sqlite file path or postgres connection string.
	DSN   string        `koanf:"dsn" validate:"required_if=Backend redis,required_if=Backend sqlite,required_if=Backend postgres"`
	Table string        `koanf:"table"`
	TTL   time.Duration `koanf:"ttl" validate:"gte=0"`
}

// LogConfig configures the package level logger.
type LogConfig struct {
	Level   string `koanf:"level" validate:"oneof=debug info warn error none"`
	Backend string `koanf:"backend" validate:"oneof=std golog"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8000",
			RequestTimeout:    30 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		LLM: LLMConfig{
			Provider:              "none",
			Model:                 "gpt-4",
			Timeout:               20 * time.Second,
			StageTimeout:          25 * time.Second,
			ExtractionTemperature: 0.2,
			QuestionTemperature:   0.3,
		},
		Extraction: ExtractionConfig{
			Concurrency: 1,
			CacheSize:   256,
		},
		Confidence: ConfidenceConfig{
			Provided:         1.0,
			Exact:            1.0,
			Inferred:         0.7,
			Context:          0.5,
			Default:          0.3,
			ViolationPenalty: 0.1,
			MaxPenalty:       0.3,
		},
		Audit: AuditConfig{
			Backend: "none",
			Table:   "checkpoints",
		},
		Log: LogConfig{
			Level:   "info",
			Backend: "std",
		},
	}
}
