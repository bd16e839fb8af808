package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/haasonsaas/evalharness/internal/providers"
)

// Config is the top-level harness configuration.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Eval      EvalConfig      `yaml:"eval"`
	Results   ResultsConfig   `yaml:"results"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ModelConfig identifies the model under evaluation and how to reach it.
type ModelConfig struct {
	// Name is the model identifier reported in results.
	Name string `yaml:"name"`
	// Framework is "transformer" or "rules".
	Framework string `yaml:"framework"`
	// Endpoint is the base URL of the inference server.
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds a single prediction request.
	Timeout time.Duration `yaml:"timeout"`
}

// TokenizerConfig describes the tokenizer backing feature preparation.
type TokenizerConfig struct {
	// Endpoint is the base URL of the tokenization server.
	Endpoint string `yaml:"endpoint"`
	// ModelMaxLength caps the encoded window size in tokens.
	ModelMaxLength int `yaml:"model_max_length"`
	// ClassTokenID is the vocabulary id of the class token.
	ClassTokenID int `yaml:"class_token_id"`
}

// EvalConfig tunes an evaluation run.
type EvalConfig struct {
	// Limit optionally caps the number of examples evaluated. Zero means all.
	Limit int `yaml:"limit"`
	// Workers is the parallelism used when resolving answer spans.
	Workers int `yaml:"workers"`
}

// ResultsConfig controls report persistence.
type ResultsConfig struct {
	// Path is the SQLite database file. Empty keeps results in memory only.
	Path string `yaml:"path"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Insecure     bool    `yaml:"insecure"`
}

// Load reads, merges, and validates the configuration at path.
func Load(path string) (*Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with all defaults applied and no model set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Model.Framework == "" {
		cfg.Model.Framework = string(providers.FrameworkTransformer)
	}
	if cfg.Model.Timeout == 0 {
		cfg.Model.Timeout = 2 * time.Minute
	}
	if cfg.Tokenizer.ModelMaxLength == 0 {
		cfg.Tokenizer.ModelMaxLength = 512
	}
	if cfg.Eval.Workers == 0 {
		cfg.Eval.Workers = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Tracing.SamplingRate == 0 {
		cfg.Tracing.SamplingRate = 1.0
	}
}

// Validate checks the configuration for values that would fail later.
func (c *Config) Validate() error {
	switch providers.Framework(c.Model.Framework) {
	case providers.FrameworkTransformer, providers.FrameworkRules:
	default:
		return fmt.Errorf("unknown model framework %q", c.Model.Framework)
	}
	if c.Tokenizer.ModelMaxLength < 8 {
		return fmt.Errorf("tokenizer model_max_length %d is too small", c.Tokenizer.ModelMaxLength)
	}
	if c.Eval.Limit < 0 {
		return fmt.Errorf("eval limit must not be negative")
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("eval workers must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}
	return nil
}
