package chatbot

import (
	"fmt"
	"strings"

	"github.com/wolfman30/agency-chat/internal/knowledge"
)

// DefaultHistoryWindow is how many prior turns are sent to the model.
const DefaultHistoryWindow = 10

// DefaultSystemPrompt is the persona used when no custom prompt is configured.
func DefaultSystemPrompt(botName, bookingLink string) string {
	if strings.TrimSpace(botName) == "" {
		botName = "Maya"
	}
	return fmt.Sprintf(`You are %s, the friendly AI assistant for a growth-focused digital marketing agency.
You help business owners understand our services (performance marketing, AI automation, web design, SEO and social media) and our pricing.

Tone: warm, confident and concise. Speak plainly, avoid jargon, and ask one question at a time.

Booking rule (strict): only mention or share the booking link (%s) when the visitor explicitly asks to book or schedule a call, or after you have suggested a strategy call and the visitor agreed. Never push the booking link otherwise.

Keep replies under 120 words unless the topic genuinely needs more detail. If you do not know something, say so and offer to connect the visitor with the team.`, botName, bookingLink)
}

// PromptAssembler turns one chat turn into the message list for a completion call.
type PromptAssembler struct {
	historyWindow int
}

// NewPromptAssembler keeps the last window turns of history; window <= 0 uses DefaultHistoryWindow.
func NewPromptAssembler(window int) *PromptAssembler {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &PromptAssembler{historyWindow: window}
}

// Assemble builds the system message, the trailing history window and the
// current user message, in that order.
func (p *PromptAssembler) Assemble(cfg knowledge.BotConfig, context string, lead LeadInfo, history []ChatMessage, userMessage string) []LLMMessage {
	system := strings.TrimSpace(cfg.CustomPrompt)
	if system == "" {
		system = DefaultSystemPrompt(cfg.BotName, cfg.BookingLink)
	}
	if context != "" {
		system += "\n\n" + context
	}
	if known := leadLines(lead); known != "" {
		system += "\n\n**Known visitor details:**\n" + known
	}

	if len(history) > p.historyWindow {
		history = history[len(history)-p.historyWindow:]
	}

	messages := make([]LLMMessage, 0, len(history)+2)
	messages = append(messages, LLMMessage{Role: ChatRoleSystem, Content: system})
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		role := ChatRoleUser
		if turn.Role.IsBot() {
			role = ChatRoleAssistant
		}
		messages = append(messages, LLMMessage{Role: role, Content: content})
	}
	messages = append(messages, LLMMessage{Role: ChatRoleUser, Content: userMessage})
	return messages
}

func leadLines(lead LeadInfo) string {
	var lines []string
	for _, f := range []struct{ label, value string }{
		{"Name", lead.Name},
		{"Email", lead.Email},
		{"Location", lead.Location},
		{"Interest", lead.Interest},
	} {
		if f.value != "" {
			lines = append(lines, f.label+": "+f.value)
		}
	}
	return strings.Join(lines, "\n")
}
