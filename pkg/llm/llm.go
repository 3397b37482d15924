// Package llm selects and constructs the configured generation client.
package llm

import (
	"os"

	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/llm/anthropic"
	"github.com/skillbuilder/skillbuilder/pkg/llm/google"
	"github.com/skillbuilder/skillbuilder/pkg/llm/openai"
	llmtypes "github.com/skillbuilder/skillbuilder/pkg/types/llm"
)

// credentialEnvVars are the conventional provider environment variables
// consulted when no key is configured explicitly
var credentialEnvVars = map[string]string{
	llmtypes.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llmtypes.ProviderOpenAI:    "OPENAI_API_KEY",
	llmtypes.ProviderGoogle:    "GOOGLE_API_KEY",
}

// NewGenerator returns the generator for config.Provider
func NewGenerator(config llmtypes.Config) (llmtypes.Generator, error) {
	config = WithEnvCredential(config.WithDefaults())

	switch config.Provider {
	case llmtypes.ProviderAnthropic:
		return anthropic.NewGenerator(config), nil
	case llmtypes.ProviderOpenAI:
		return openai.NewGenerator(config), nil
	case llmtypes.ProviderGoogle:
		return google.NewGenerator(config), nil
	default:
		return nil, errors.Errorf("unsupported llm provider: %s", config.Provider)
	}
}

// WithEnvCredential fills an empty APIKey from the provider's
// conventional environment variable
func WithEnvCredential(config llmtypes.Config) llmtypes.Config {
	if config.APIKey != "" {
		return config
	}
	if name, ok := credentialEnvVars[config.Provider]; ok {
		config.APIKey = os.Getenv(name)
	}
	return config
}
