package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/agency-chat/internal/chatbot"
	appconfig "github.com/wolfman30/agency-chat/internal/config"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// AWSConfigLoader resolves the shared AWS SDK config on first use.
type AWSConfigLoader func(ctx context.Context) (aws.Config, error)

// BuildLLMClient wires the configured completion provider behind the
// per-call timeout. The returned cleanup releases provider resources.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (chatbot.LLMClient, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	noop := func() {}

	var (
		client   chatbot.LLMClient
		provider string
		model    string
		cleanup  = noop
	)
	switch cfg.LLMProvider {
	case appconfig.ProviderOpenAI:
		c, err := chatbot.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: openai client: %w", err)
		}
		client, provider, model = c, chatbot.ProviderOpenAI, cfg.OpenAIModel
	case appconfig.ProviderBedrock:
		if loadAWS == nil {
			return nil, nil, fmt.Errorf("bootstrap: bedrock requires an aws config loader")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		c, err := chatbot.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: bedrock client: %w", err)
		}
		client, provider, model = c, chatbot.ProviderBedrock, cfg.BedrockModelID
	case appconfig.ProviderGemini:
		c, err := chatbot.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		client, provider, model = c, chatbot.ProviderGemini, cfg.GeminiModel
		cleanup = func() {
			if err := c.Close(); err != nil {
				logger.Warn("gemini client close failed", "error", err)
			}
		}
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown llm provider %q", cfg.LLMProvider)
	}

	logger.Info("completion provider configured",
		"provider", provider,
		"model", model,
		"timeout", cfg.CompletionTimeout.String(),
	)
	return chatbot.NewTimeoutClient(client, provider, cfg.CompletionTimeout), cleanup, nil
}
