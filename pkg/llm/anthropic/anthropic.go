// Package anthropic implements skill generation on the Anthropic Messages API.
package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/llm/prompts"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	llmtypes "github.com/skillbuilder/skillbuilder/pkg/types/llm"
	"github.com/skillbuilder/skillbuilder/pkg/version"
)

// DefaultModel is used when no model is configured
const DefaultModel = "claude-sonnet-4-20250514"

// Generator issues one Messages API call per Generate invocation.
// A client is built per call so a caller-supplied key never leaks into
// other requests.
type Generator struct {
	config llmtypes.Config
	opts   []option.RequestOption
}

// NewGenerator creates an Anthropic generator. Extra request options are
// appended after the defaults and may override them.
func NewGenerator(config llmtypes.Config, opts ...option.RequestOption) *Generator {
	config = config.WithDefaults()
	if config.Model == "" {
		config.Model = DefaultModel
	}
	return &Generator{
		config: config,
		opts:   opts,
	}
}

// Generate sends prompt with the fixed skill template as system prompt
func (g *Generator) Generate(ctx context.Context, prompt string, credential string) (string, error) {
	apiKey, err := llmtypes.ResolveCredential(llmtypes.ProviderAnthropic, g.config.APIKey, credential)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	client := anthropic.NewClient(g.clientOptions(apiKey)...)

	logger.G(ctx).WithField("model", g.config.Model).Debug("sending skill generation request to Anthropic")

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.config.Model),
		MaxTokens: int64(g.config.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: prompts.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompts.UserPrompt(prompt))),
		},
	})
	if err != nil {
		return "", classifyError(err)
	}

	if message == nil || len(message.Content) == 0 || message.Content[0].Text == "" {
		return "", llmtypes.EmptyResponse(errors.New("anthropic response has no text content"))
	}

	return message.Content[0].Text, nil
}

func (g *Generator) clientOptions(apiKey string) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", version.UserAgent()),
	}
	if g.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(g.config.BaseURL))
	}
	return append(opts, g.opts...)
}

func classifyError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llmtypes.ClassifyStatus(apiErr.StatusCode, err)
	}
	return llmtypes.ClassifyTransport(err)
}
