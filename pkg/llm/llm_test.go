package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbuilder/skillbuilder/pkg/llm/anthropic"
	"github.com/skillbuilder/skillbuilder/pkg/llm/google"
	"github.com/skillbuilder/skillbuilder/pkg/llm/openai"
	llmtypes "github.com/skillbuilder/skillbuilder/pkg/types/llm"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		provider string
		expected any
	}{
		{"", &anthropic.Generator{}},
		{llmtypes.ProviderAnthropic, &anthropic.Generator{}},
		{llmtypes.ProviderOpenAI, &openai.Generator{}},
		{llmtypes.ProviderGoogle, &google.Generator{}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			g, err := NewGenerator(llmtypes.Config{Provider: tt.provider})
			require.NoError(t, err)
			assert.IsType(t, tt.expected, g)
		})
	}
}

func TestNewGeneratorUnknownProvider(t *testing.T) {
	_, err := NewGenerator(llmtypes.Config{Provider: "mistral"})
	assert.ErrorContains(t, err, "unsupported llm provider")
}

func TestWithEnvCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	config := WithEnvCredential(llmtypes.Config{Provider: llmtypes.ProviderOpenAI})
	assert.Equal(t, "sk-from-env", config.APIKey)

	config = WithEnvCredential(llmtypes.Config{Provider: llmtypes.ProviderOpenAI, APIKey: "sk-explicit"})
	assert.Equal(t, "sk-explicit", config.APIKey)

	config = WithEnvCredential(llmtypes.Config{Provider: "other"})
	assert.Empty(t, config.APIKey)
}
