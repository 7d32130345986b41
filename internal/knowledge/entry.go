package knowledge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry is an admin-authored question/answer pair with matching metadata.
type Entry struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Question  string    `json:"question"`
	Keywords  string    `json:"keywords"`
	Answer    string    `json:"answer"`
	Priority  int       `json:"priority"`
	IsActive  *bool     `json:"is_active,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the entry may be matched. A missing flag means active.
func (e Entry) Active() bool {
	return e.IsActive == nil || *e.IsActive
}

// KeywordList splits the comma-separated keywords, trimmed and lowercased.
func (e Entry) KeywordList() []string {
	if strings.TrimSpace(e.Keywords) == "" {
		return nil
	}
	parts := strings.Split(e.Keywords, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks an entry submitted through the admin console.
func (e *Entry) Validate() error {
	e.Question = strings.TrimSpace(e.Question)
	e.Answer = strings.TrimSpace(e.Answer)
	e.Category = strings.TrimSpace(e.Category)
	if e.Question == "" {
		return fmt.Errorf("%w: question is required", ErrInvalidEntry)
	}
	if e.Answer == "" {
		return fmt.Errorf("%w: answer is required", ErrInvalidEntry)
	}
	if e.Priority < 0 || e.Priority > 100 {
		return fmt.Errorf("%w: priority must be between 0 and 100", ErrInvalidEntry)
	}
	return nil
}

// Bool returns a pointer to v, for building entries with an explicit flag.
func Bool(v bool) *bool {
	return &v
}

// UnmarshalJSON accepts the loose types the PHP backend emits: numeric strings
// for id and priority, and 0/1 or "true"/"1" for is_active.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	aux := struct {
		*alias
		ID        flexString `json:"id"`
		Priority  flexInt    `json:"priority"`
		IsActive  *flexBool  `json:"is_active"`
		CreatedAt flexTime   `json:"created_at"`
		UpdatedAt flexTime   `json:"updated_at"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.ID = string(aux.ID)
	e.Priority = int(aux.Priority)
	e.CreatedAt = time.Time(aux.CreatedAt)
	e.UpdatedAt = time.Time(aux.UpdatedAt)
	if aux.IsActive != nil {
		e.IsActive = Bool(bool(*aux.IsActive))
	} else {
		e.IsActive = nil
	}
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("knowledge: expected string or number, got %s", data)
	}
	*s = flexString(num.String())
	return nil
}

type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = 0
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*i = flexInt(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("knowledge: expected integer, got %s", data)
	}
	str = strings.TrimSpace(str)
	if str == "" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("knowledge: expected integer, got %q", str)
	}
	*i = flexInt(n)
	return nil
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*b = num != 0
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("knowledge: expected boolean, got %s", data)
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(str))
	if err != nil {
		return fmt.Errorf("knowledge: expected boolean, got %q", str)
	}
	*b = flexBool(parsed)
	return nil
}

// flexTime never fails: timestamps are informational, an unknown layout is zero.
type flexTime time.Time

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*t = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, str); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	*t = flexTime{}
	return nil
}
