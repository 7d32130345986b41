package bootstrap

import (
	"github.com/wolfman30/agency-chat/internal/chatbot"
	appconfig "github.com/wolfman30/agency-chat/internal/config"
	"github.com/wolfman30/agency-chat/internal/knowledge"
	"github.com/wolfman30/agency-chat/internal/observability/metrics"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// ChatDeps are the collaborators the chat service is assembled from.
type ChatDeps struct {
	Source      knowledge.Source
	ConfigSrc   knowledge.ConfigSource
	LLM         chatbot.LLMClient
	Transcripts chatbot.TranscriptStore
	Leads       chatbot.LeadSink
	Metrics     *metrics.ChatMetrics
	Logger      *logging.Logger
}

// BuildChatService maps configuration onto the chat pipeline.
func BuildChatService(cfg *appconfig.Config, deps ChatDeps) *chatbot.Service {
	svcCfg := chatbot.ServiceConfig{
		MaxTokens:       chatbot.DefaultMaxTokens,
		Temperature:     chatbot.Float32(float32(cfg.CompletionTemperature)),
		HistoryWindow:   chatbot.DefaultHistoryWindow,
		ContactEmail:    cfg.ContactEmail,
		ContactWhatsApp: cfg.ContactWhatsApp,
	}
	switch cfg.LLMProvider {
	case appconfig.ProviderOpenAI:
		svcCfg.Provider, svcCfg.Model = chatbot.ProviderOpenAI, cfg.OpenAIModel
	case appconfig.ProviderBedrock:
		svcCfg.Provider, svcCfg.Model = chatbot.ProviderBedrock, cfg.BedrockModelID
	case appconfig.ProviderGemini:
		svcCfg.Provider, svcCfg.Model = chatbot.ProviderGemini, cfg.GeminiModel
	}
	if cfg.CompletionMaxTokens > 0 {
		svcCfg.MaxTokens = int32(cfg.CompletionMaxTokens)
	}
	if cfg.HistoryWindow > 0 {
		svcCfg.HistoryWindow = cfg.HistoryWindow
	}

	opts := []chatbot.ServiceOption{
		chatbot.WithMetrics(deps.Metrics),
		chatbot.WithLogger(deps.Logger),
	}
	if deps.Transcripts != nil {
		opts = append(opts, chatbot.WithTranscripts(deps.Transcripts))
	}
	if deps.Leads != nil {
		opts = append(opts, chatbot.WithLeadSink(deps.Leads))
		if lookup, ok := deps.Leads.(chatbot.LeadLookup); ok {
			opts = append(opts, chatbot.WithLeadLookup(lookup))
		}
	}
	return chatbot.NewService(deps.Source, deps.ConfigSrc, deps.LLM, svcCfg, opts...)
}
