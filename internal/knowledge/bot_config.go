package knowledge

import (
	"encoding/json"
	"strings"
)

// BotConfig holds widget presentation and chat behaviour settings.
type BotConfig struct {
	BotName         string `json:"bot_name"`
	GreetingMessage string `json:"greeting_message"`
	PrimaryColor    string `json:"primary_color"`
	SecondaryColor  string `json:"secondary_color"`
	AvatarURL       string `json:"avatar_url"`
	AutoCollectLead bool   `json:"auto_collect_lead"`
	BookingLink     string `json:"booking_link"`
	CustomPrompt    string `json:"custom_prompt"`
	FallbackMessage string `json:"fallback_message"`
}

// DefaultBotConfig returns the settings used when no config can be loaded.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		BotName:         "Maya",
		GreetingMessage: "Hi! I'm Maya 👋 How can I help you grow your business today?",
		PrimaryColor:    "#14b8a6",
		SecondaryColor:  "#3b82f6",
		AutoCollectLead: true,
		BookingLink:     "https://calendly.com/agency/strategy-call",
	}
}

// WithDefaults fills blank presentation fields from DefaultBotConfig.
// Behaviour fields (custom prompt, fallback message) stay as configured.
func (c BotConfig) WithDefaults() BotConfig {
	d := DefaultBotConfig()
	if strings.TrimSpace(c.BotName) == "" {
		c.BotName = d.BotName
	}
	if strings.TrimSpace(c.GreetingMessage) == "" {
		c.GreetingMessage = d.GreetingMessage
	}
	if strings.TrimSpace(c.PrimaryColor) == "" {
		c.PrimaryColor = d.PrimaryColor
	}
	if strings.TrimSpace(c.SecondaryColor) == "" {
		c.SecondaryColor = d.SecondaryColor
	}
	if strings.TrimSpace(c.BookingLink) == "" {
		c.BookingLink = d.BookingLink
	}
	return c
}

// UnmarshalJSON tolerates auto_collect_lead sent as 0/1 or a string.
func (c *BotConfig) UnmarshalJSON(data []byte) error {
	type alias BotConfig
	aux := struct {
		*alias
		AutoCollectLead *flexBool `json:"auto_collect_lead"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.AutoCollectLead != nil {
		c.AutoCollectLead = bool(*aux.AutoCollectLead)
	}
	return nil
}
