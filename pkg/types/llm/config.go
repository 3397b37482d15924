// Package llm defines the generation client contract shared by the
// provider implementations: configuration, credential format checks and
// mapping of upstream failures onto the skill error taxonomy.
package llm

import (
	"context"
	"time"
)

// Provider names
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
)

const (
	// DefaultMaxTokens caps the generated document length
	DefaultMaxTokens = 2048
	// DefaultTimeout bounds a single generation call
	DefaultTimeout = 60 * time.Second
)

// Config holds the configuration for a generation client
type Config struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// APIKey is the process-wide default credential. Callers may override
	// it per request (bring-your-own-key).
	APIKey string `mapstructure:"api_key"`
	// BaseURL overrides the provider endpoint, mainly for tests and proxies
	BaseURL string `mapstructure:"base_url"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Generator issues a single completion call and returns the raw text of
// the first response segment. A non-empty credential replaces the
// configured default for that call only.
type Generator interface {
	Generate(ctx context.Context, prompt string, credential string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, prompt string, credential string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, credential string) (string, error) {
	return f(ctx, prompt, credential)
}
