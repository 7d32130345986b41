package chatbot

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

const (
	DefaultMaxTokens   int32   = 500
	DefaultTemperature float32 = 0.7
)

// LLMMessage is one entry of the ordered list sent to a completion API.
type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model     string
	Messages  []LLMMessage
	MaxTokens int32
	// Temperature is nil for the provider default; zero is a valid setting.
	Temperature *float32
}

// Float32 returns a pointer to v, for LLMRequest.Temperature.
func Float32(v float32) *float32 { return &v }

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient performs a single chat completion. Implementations report
// failures as *CompletionError.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// splitSystem separates system content from the conversational turns for
// providers that take the system prompt out of band.
func splitSystem(messages []LLMMessage) (system []string, turns []LLMMessage) {
	for _, m := range messages {
		if m.Role == ChatRoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
