// Package google implements skill generation on the Gemini API.
package google

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/skillbuilder/skillbuilder/pkg/llm/prompts"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	llmtypes "github.com/skillbuilder/skillbuilder/pkg/types/llm"
	"github.com/skillbuilder/skillbuilder/pkg/version"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Generator issues one GenerateContent call per Generate invocation
type Generator struct {
	config llmtypes.Config
}

// NewGenerator creates a Gemini generator
func NewGenerator(config llmtypes.Config) *Generator {
	config = config.WithDefaults()
	if config.Model == "" {
		config.Model = DefaultModel
	}
	return &Generator{config: config}
}

// Generate sends prompt with the fixed skill template as system instruction
func (g *Generator) Generate(ctx context.Context, prompt string, credential string) (string, error) {
	apiKey, err := llmtypes.ResolveCredential(llmtypes.ProviderGoogle, g.config.APIKey, credential)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Headers: http.Header{"User-Agent": []string{version.UserAgent()}},
		},
	}
	if g.config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = g.config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return "", llmtypes.ClassifyTransport(errors.Wrap(err, "failed to create Google GenAI client"))
	}

	logger.G(ctx).WithField("model", g.config.Model).Debug("sending skill generation request to Gemini")

	resp, err := client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompts.UserPrompt(prompt)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompts.SystemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(g.config.MaxTokens),
	})
	if err != nil {
		return "", classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", llmtypes.EmptyResponse(errors.New("gemini response has no text part"))
	}
	return text, nil
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llmtypes.ClassifyStatus(apiErr.Code, err)
	}
	return llmtypes.ClassifyTransport(err)
}
