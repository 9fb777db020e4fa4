// Package llm dispatches chat completions to the configured model provider
// through langchaingo's common model interface.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

// Supported provider names
const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure_openai"
	ProviderAnthropic   = "anthropic"
)

// ErrUnknownProvider indicates an unsupported provider name in the runtime
// LLM configuration
var ErrUnknownProvider = errors.New("unknown llm provider")

// Client builds a provider-specific model per call from the runtime LLM
// configuration, so provider and model can be switched without a restart.
type Client struct {
	cfg *config.LLMConfig
	log *logger.Logger
}

// NewClient creates an LLM client from static provider credentials
func NewClient(cfg *config.LLMConfig, log *logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log.Named("llm"),
	}
}

// Generate produces an assistant reply for the given conversation turn.
// History is replayed in order ahead of the new user message.
func (c *Client) Generate(ctx context.Context, runtime domain.LLMConfig, history []domain.Message, message string) (string, error) {
	model, err := c.newModel(runtime)
	if err != nil {
		return "", err
	}

	messages := buildMessages(SystemPrompt(), history, message)

	resp, err := model.GenerateContent(ctx, messages,
		llms.WithTemperature(runtime.Temperature),
		llms.WithMaxTokens(c.cfg.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion with %s: %w", runtime.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider %s returned no choices", runtime.Provider)
	}
	return resp.Choices[0].Content, nil
}

// newModel constructs the provider-specific model named by the runtime
// configuration
func (c *Client) newModel(runtime domain.LLMConfig) (llms.Model, error) {
	switch runtime.Provider {
	case ProviderOpenAI:
		return openai.New(
			openai.WithToken(c.cfg.OpenAIAPIKey),
			openai.WithModel(runtime.ModelName),
		)
	case ProviderAzureOpenAI:
		return openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithToken(c.cfg.AzureAPIKey),
			openai.WithBaseURL(c.cfg.AzureEndpoint),
			openai.WithAPIVersion(c.cfg.AzureAPIVersion),
			openai.WithModel(runtime.ModelName),
		)
	case ProviderAnthropic:
		return anthropic.New(
			anthropic.WithToken(c.cfg.AnthropicAPIKey),
			anthropic.WithModel(runtime.ModelName),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, runtime.Provider)
	}
}

// buildMessages maps a stored transcript onto the provider message roles
func buildMessages(systemPrompt string, history []domain.Message, message string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))

	for _, msg := range history {
		switch msg.Type {
		case domain.MessageTypeUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		case domain.MessageTypeBot:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, msg.Content))
		}
	}

	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, message))
	return messages
}
