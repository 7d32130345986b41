package chatbot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/agency-chat/internal/knowledge"
)

func TestAssemble_DefaultPromptAndOrder(t *testing.T) {
	p := NewPromptAssembler(0)
	cfg := knowledge.DefaultBotConfig()
	history := []ChatMessage{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleBot, Content: "Hello! What's your name?", CollectInfo: CollectName},
		{Role: RoleUser, Content: "Sam"},
	}

	msgs := p.Assemble(cfg, "", LeadInfo{}, history, "what do you do?")
	require.Len(t, msgs, 5)
	assert.Equal(t, ChatRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Maya")
	assert.Contains(t, msgs[0].Content, cfg.BookingLink)
	assert.Contains(t, msgs[0].Content, "120 words")
	assert.Equal(t, LLMMessage{Role: ChatRoleUser, Content: "hi"}, msgs[1])
	assert.Equal(t, LLMMessage{Role: ChatRoleAssistant, Content: "Hello! What's your name?"}, msgs[2])
	assert.Equal(t, LLMMessage{Role: ChatRoleUser, Content: "Sam"}, msgs[3])
	assert.Equal(t, LLMMessage{Role: ChatRoleUser, Content: "what do you do?"}, msgs[4])
}

func TestAssemble_CustomPromptContextAndLead(t *testing.T) {
	p := NewPromptAssembler(10)
	cfg := knowledge.BotConfig{CustomPrompt: "  You are Rex.  "}
	lead := LeadInfo{Name: "Sam", Location: "Austin"}

	msgs := p.Assemble(cfg, "**Default Information:**\nSEO: stuff", lead, nil, "hey")
	require.Len(t, msgs, 2)
	assert.Equal(t,
		"You are Rex.\n\n**Default Information:**\nSEO: stuff\n\n**Known visitor details:**\nName: Sam\nLocation: Austin",
		msgs[0].Content)
	assert.NotContains(t, msgs[0].Content, "Email:")
}

func TestAssemble_BlankCustomPromptUsesDefault(t *testing.T) {
	p := NewPromptAssembler(10)
	msgs := p.Assemble(knowledge.BotConfig{BotName: "Ava", CustomPrompt: "   "}, "", LeadInfo{}, nil, "hey")
	assert.Contains(t, msgs[0].Content, "You are Ava")
}

func TestAssemble_HistoryWindow(t *testing.T) {
	p := NewPromptAssembler(10)
	var history []ChatMessage
	for i := 0; i < 15; i++ {
		history = append(history, ChatMessage{Role: RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	msgs := p.Assemble(knowledge.DefaultBotConfig(), "", LeadInfo{}, history, "now")
	require.Len(t, msgs, 12)
	assert.Equal(t, "m5", msgs[1].Content)
	assert.Equal(t, "m14", msgs[10].Content)
	assert.Equal(t, "now", msgs[11].Content)
}

func TestAssemble_AssistantRoleAccepted(t *testing.T) {
	p := NewPromptAssembler(10)
	history := []ChatMessage{{Role: Role("assistant"), Content: "earlier"}, {Role: RoleUser, Content: "  "}}

	msgs := p.Assemble(knowledge.DefaultBotConfig(), "", LeadInfo{}, history, "now")
	require.Len(t, msgs, 3)
	assert.Equal(t, ChatRoleAssistant, msgs[1].Role)
}
