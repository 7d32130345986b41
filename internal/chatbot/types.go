package chatbot

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Role identifies who authored a widget message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// IsBot treats the completion API's "assistant" role as the bot.
func (r Role) IsBot() bool {
	return r == RoleBot || r == ChatRoleAssistant
}

// ChatMessage is one entry of the widget conversation, with the UI
// directives the bot attached to it.
type ChatMessage struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Suggestions []string     `json:"suggestions,omitempty"`
	ShowBooking bool         `json:"show_booking,omitempty"`
	BookingLink string       `json:"booking_link,omitempty"`
	CollectInfo CollectField `json:"collect_info"`
}

// CollectField names the lead field the bot should ask for next.
// The zero value is CollectNone.
type CollectField int

const (
	CollectNone CollectField = iota
	CollectName
	CollectEmail
	CollectLocation
	CollectInterest
)

var collectFieldNames = map[CollectField]string{
	CollectName:     "name",
	CollectEmail:    "email",
	CollectLocation: "location",
	CollectInterest: "interest",
}

func (f CollectField) String() string {
	if name, ok := collectFieldNames[f]; ok {
		return name
	}
	return "none"
}

// ParseCollectField maps a directive name to its field; unknown names are CollectNone.
func ParseCollectField(s string) CollectField {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range collectFieldNames {
		if name == s {
			return f
		}
	}
	return CollectNone
}

// MarshalJSON encodes CollectNone as null and other fields by name.
func (f CollectField) MarshalJSON() ([]byte, error) {
	if f == CollectNone {
		return []byte("null"), nil
	}
	return json.Marshal(f.String())
}

func (f *CollectField) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = CollectNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = CollectNone
		return nil
	}
	*f = ParseCollectField(s)
	return nil
}

// LeadInfo accumulates a visitor's contact details over a session.
type LeadInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Interest string `json:"interest"`
}

// Field returns the value held for f.
func (l LeadInfo) Field(f CollectField) string {
	switch f {
	case CollectName:
		return l.Name
	case CollectEmail:
		return l.Email
	case CollectLocation:
		return l.Location
	case CollectInterest:
		return l.Interest
	default:
		return ""
	}
}

// IsEmpty reports whether nothing has been captured yet.
func (l LeadInfo) IsEmpty() bool {
	return l == LeadInfo{}
}

// ChatRequest is the sendChat payload posted by the widget.
type ChatRequest struct {
	SessionID           string        `json:"session_id"`
	Message             string        `json:"message"`
	LeadInfo            LeadInfo      `json:"lead_info"`
	ConversationHistory []ChatMessage `json:"conversation_history"`
}

// ChatResponse is the envelope returned for one chat turn.
type ChatResponse struct {
	Success          bool         `json:"success"`
	Message          string       `json:"message"`
	Suggestions      []string     `json:"suggestions"`
	ShowBooking      bool         `json:"show_booking"`
	BookingLink      string       `json:"booking_link"`
	SessionID        string       `json:"session_id"`
	KnowledgeMatched bool         `json:"knowledge_matched"`
	CollectInfo      CollectField `json:"collect_info"`
	LeadInfo         LeadInfo     `json:"lead_info"`
}

// BotMessage converts the envelope into the transcript entry it produced.
func (r *ChatResponse) BotMessage(at time.Time) ChatMessage {
	return ChatMessage{
		Role:        RoleBot,
		Content:     r.Message,
		Timestamp:   at,
		Suggestions: r.Suggestions,
		ShowBooking: r.ShowBooking,
		BookingLink: r.BookingLink,
		CollectInfo: r.CollectInfo,
	}
}
