package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	ProviderGemini     = "gemini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// geminiChat sends one chat turn. The genai client is wrapped so tests can
// substitute canned responses.
type geminiChat interface {
	Send(ctx context.Context, req geminiTurn) (*genai.GenerateContentResponse, error)
}

type geminiTurn struct {
	Model       string
	System      string
	History     []*genai.Content
	Message     string
	Temperature *float32
	MaxTokens   int32
}

type genaiChat struct {
	client *genai.Client
}

func (g genaiChat) Send(ctx context.Context, turn geminiTurn) (*genai.GenerateContentResponse, error) {
	model := g.client.GenerativeModel(turn.Model)
	if turn.Temperature != nil {
		model.SetTemperature(*turn.Temperature)
	}
	if turn.MaxTokens > 0 {
		model.SetMaxOutputTokens(turn.MaxTokens)
	}
	if turn.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(turn.System))
	}
	cs := model.StartChat()
	cs.History = turn.History
	return cs.SendMessage(ctx, genai.Text(turn.Message))
}

// GeminiClient completes chats with Google's Gemini API.
type GeminiClient struct {
	chat    geminiChat
	closer  func() error
	modelID string
}

func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &CompletionError{Provider: ProviderGemini, Err: errors.New("api key is required")}
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chatbot: create gemini client: %w", err)
	}
	c := newGeminiClient(genaiChat{client: client}, modelID)
	c.closer = client.Close
	return c, nil
}

func newGeminiClient(chat geminiChat, modelID string) *GeminiClient {
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultGeminiModel
	}
	return &GeminiClient{chat: chat, modelID: modelID}
}

func (c *GeminiClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	system, turns := splitSystem(req.Messages)
	if len(turns) == 0 {
		return LLMResponse{}, &CompletionError{Provider: ProviderGemini, Err: errors.New("at least one message is required")}
	}

	modelID := req.Model
	if modelID == "" {
		modelID = c.modelID
	}
	turn := geminiTurn{
		Model:       modelID,
		System:      strings.TrimSpace(strings.Join(system, "\n\n")),
		Message:     turns[len(turns)-1].Content,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range turns[:len(turns)-1] {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		role := "user"
		if m.Role == ChatRoleAssistant {
			role = "model"
		}
		turn.History = append(turn.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(content)}})
	}

	resp, err := c.chat.Send(ctx, turn)
	if err != nil {
		return LLMResponse{}, &CompletionError{Provider: ProviderGemini, Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return LLMResponse{}, &CompletionError{Provider: ProviderGemini, Err: errors.New("no candidates returned")}
	}

	candidate := resp.Candidates[0]
	var b strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return LLMResponse{}, &CompletionError{Provider: ProviderGemini, Err: errors.New("empty completion")}
	}

	result := LLMResponse{Text: text, StopReason: candidate.FinishReason.String()}
	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}
	return result, nil
}

// Close releases the underlying Gemini client.
func (c *GeminiClient) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}
