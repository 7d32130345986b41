package chatbot

import (
	"context"
	"errors"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	ProviderOpenAI     = "openai"
	DefaultOpenAIModel = "gpt-4o-mini"
)

type chatCompletionAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient completes chats against an OpenAI-compatible endpoint.
type OpenAIClient struct {
	api   chatCompletionAPI
	model string
}

// NewOpenAIClient fails when apiKey is empty; a missing credential is a
// startup error, not a per-request one.
func NewOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &CompletionError{Provider: ProviderOpenAI, Err: errors.New("api key is required")}
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return newOpenAIClient(openai.NewClientWithConfig(cfg), model), nil
}

func newOpenAIClient(api chatCompletionAPI, model string) *OpenAIClient {
	if api == nil {
		panic("chatbot: openai client cannot be nil")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{api: api, model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case ChatRoleSystem:
			role = openai.ChatMessageRoleSystem
		case ChatRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	creq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: int(req.MaxTokens),
	}
	if req.Temperature != nil {
		// go-openai drops a zero temperature from the payload.
		creq.Temperature = max(*req.Temperature, math.SmallestNonzeroFloat32)
	}
	resp, err := c.api.CreateChatCompletion(ctx, creq)
	if err != nil {
		return LLMResponse{}, &CompletionError{Provider: ProviderOpenAI, StatusCode: openAIStatus(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, &CompletionError{Provider: ProviderOpenAI, Err: errors.New("no choices returned")}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return LLMResponse{}, &CompletionError{Provider: ProviderOpenAI, Err: errors.New("empty completion")}
	}
	return LLMResponse{
		Text:       text,
		StopReason: string(resp.Choices[0].FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
