package leads

import (
	"strings"
	"time"
)

const (
	SourceWeb  = "web"
	SourceChat = "chat"
)

// Lead is a prospect captured from the contact form or the chat widget.
type Lead struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	Interest  string    `json:"interest"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Interest string `json:"interest"`
	Message  string `json:"message"`
	Source   string `json:"source"`
}

// Normalize trims every field and defaults the source.
func (r *CreateLeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Location = strings.TrimSpace(r.Location)
	r.Interest = strings.TrimSpace(r.Interest)
	r.Message = strings.TrimSpace(r.Message)
	r.Source = strings.TrimSpace(r.Source)
	if r.Source == "" {
		r.Source = SourceWeb
	}
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return ErrMissingContact
	}
	if email := strings.TrimSpace(r.Email); email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// ChatLead carries the details a chat session has collected so far.
type ChatLead struct {
	SessionID string
	Name      string
	Email     string
	Location  string
	Interest  string
}

// ListLeadsFilter narrows admin listings.
type ListLeadsFilter struct {
	Source string
	Limit  int
	Offset int
}
