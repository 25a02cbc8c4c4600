// Package core wires the enforcement, injection, recording, and audit
// components into per-execution sessions, and provides the project-level
// configuration they are constructed from.
package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
)

// Config holds project-level configuration loaded from .rewind.yaml.
type Config struct {
	Enforce  EnforceSettings  `yaml:"enforce"`
	Classify ClassifySettings `yaml:"classify"`
	Audit    AuditSettings    `yaml:"audit"`
	Explain  ExplainSettings  `yaml:"explain"`
}

// EnforceSettings controls the enforcement mode applied to sessions.
type EnforceSettings struct {
	Mode string `yaml:"mode"`
}

// ClassifySettings extends the built-in effect classification table. Rules
// listed here are consulted before the defaults, first match wins.
type ClassifySettings struct {
	Rules []effect.Rule `yaml:"rules"`
}

// AuditSettings controls the audit trail capacity.
type AuditSettings struct {
	MaxEntries int `yaml:"max_entries"`
}

// ExplainSettings controls defaults for the explain command.
type ExplainSettings struct {
	APIKeyEnv string `yaml:"api_key_env"` // env var name to read API key from (default: OPENAI_API_KEY)
	Model     string `yaml:"model"`       // LLM model name (default: gpt-4o)
	BaseURL   string `yaml:"base_url"`    // custom OpenAI-compatible API base URL
	Timeout   string `yaml:"timeout"`     // per-request timeout (e.g., "2m", "30s")
	Output    string `yaml:"output"`      // output file path (default: explanations.json)
}

// LoadConfig reads .rewind.yaml from root and returns the parsed config.
// If the file does not exist, a zero-value Config is returned with no error.
func LoadConfig(root string) (*Config, error) {
	path := filepath.Join(root, ".rewind.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Enforce.Mode != "" && !enforce.Mode(cfg.Enforce.Mode).Valid() {
		return nil, fmt.Errorf("parsing %s: unknown enforcement mode %q", path, cfg.Enforce.Mode)
	}

	return &cfg, nil
}

// Mode returns the configured enforcement mode, defaulting to strict.
func (c *Config) Mode() enforce.Mode {
	if c.Enforce.Mode == "" {
		return enforce.ModeStrict
	}
	return enforce.Mode(c.Enforce.Mode)
}

// Classifier builds the effect classifier from the configured extra rules.
func (c *Config) Classifier() *effect.Classifier {
	if len(c.Classify.Rules) == 0 {
		return effect.NewClassifier()
	}
	return effect.NewClassifierWithRules(c.Classify.Rules)
}

// ExplainTimeout parses the explain timeout setting, falling back to the
// given default on absence or parse failure.
func (c *Config) ExplainTimeout(fallback time.Duration) time.Duration {
	if c.Explain.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.Explain.Timeout)
	if err != nil {
		return fallback
	}
	return d
}
