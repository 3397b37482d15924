// Package openai implements skill generation on OpenAI-compatible
// chat-completion endpoints.
package openai

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/skillbuilder/skillbuilder/pkg/llm/prompts"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	llmtypes "github.com/skillbuilder/skillbuilder/pkg/types/llm"
)

// DefaultModel is used when no model is configured
const DefaultModel = openai.GPT4o

// Generator issues one chat completion per Generate invocation
type Generator struct {
	config llmtypes.Config
}

// NewGenerator creates an OpenAI generator
func NewGenerator(config llmtypes.Config) *Generator {
	config = config.WithDefaults()
	if config.Model == "" {
		config.Model = DefaultModel
	}
	return &Generator{config: config}
}

// Generate sends prompt with the fixed skill template as system message
func (g *Generator) Generate(ctx context.Context, prompt string, credential string) (string, error) {
	apiKey, err := llmtypes.ResolveCredential(llmtypes.ProviderOpenAI, g.config.APIKey, credential)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	clientConfig := openai.DefaultConfig(apiKey)
	if g.config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(g.config.BaseURL, "/")
	}
	client := openai.NewClientWithConfig(clientConfig)

	logger.G(ctx).WithField("model", g.config.Model).Debug("sending skill generation request to OpenAI")

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.config.Model,
		MaxTokens: g.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompts.UserPrompt(prompt)},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llmtypes.EmptyResponse(errors.New("openai response has no message content"))
	}

	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llmtypes.ClassifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return llmtypes.ClassifyStatus(reqErr.HTTPStatusCode, err)
	}

	return llmtypes.ClassifyTransport(err)
}
